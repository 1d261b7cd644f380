package main

import (
	"github.com/urfave/cli"
)

func configure(app *cli.App) {
	serveCMD := makeServeCMD()
	migrationCMD := makePGMigrationCMD()
	guardianCMD := makeGuardianCMD()
	app.Commands = []cli.Command{serveCMD, migrationCMD, guardianCMD}
}
