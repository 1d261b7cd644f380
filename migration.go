package main

import (
	"github.com/go-pg/migrations/v8"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/safetube/web-ui/services/migration"
)

func makePGMigrationCMD() cli.Command {
	migrateCmd := cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrates database",
	}
	configurePGMigration(&migrateCmd)
	return migrateCmd
}

func configurePGMigration(c *cli.Command) {
	upCmd := cli.Command{
		Name:    "up",
		Usage:   "Runs all available migrations",
		Aliases: []string{"u"},
		Action: func(c *cli.Context) error {
			return pgMigrate(c, "up")
		},
	}
	downCmd := cli.Command{
		Name:    "down",
		Usage:   "Reverts last migration",
		Aliases: []string{"d"},
		Action: func(c *cli.Context) error {
			return pgMigrate(c, "down")
		},
	}
	resetCmd := cli.Command{
		Name:    "reset",
		Usage:   "Reverts all migrations",
		Aliases: []string{"r"},
		Action: func(c *cli.Context) error {
			return pgMigrate(c, "reset")
		},
	}
	versionCmd := cli.Command{
		Name:    "version",
		Usage:   "Prints current db version",
		Aliases: []string{"v"},
		Action: func(c *cli.Context) error {
			return pgMigrate(c, "version")
		},
	}
	c.Subcommands = []cli.Command{upCmd, downCmd, resetCmd, versionCmd}
	for k := range c.Subcommands {
		c.Subcommands[k].Flags = migration.RegisterFlags(cs.RegisterPGFlags(c.Subcommands[k].Flags))
	}
}

func pgMigrate(c *cli.Context, a ...string) error {
	// Setting DB
	db := cs.NewPG(c)
	defer db.Close()

	// Setting PGMigrations
	col := migrations.NewCollection()
	mgr := migration.NewPGMigration(c, db, col)

	// Run
	return mgr.Run(a...)
}
