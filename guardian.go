package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/safetube/web-ui/services/auth"
)

const (
	guardianEmailFlag    = "email"
	guardianPasswordFlag = "password"
)

func makeGuardianCMD() cli.Command {
	addCmd := cli.Command{
		Name:   "add",
		Usage:  "Creates a guardian account",
		Action: addGuardian,
	}
	addCmd.Flags = cs.RegisterPGFlags(addCmd.Flags)
	addCmd.Flags = append(addCmd.Flags,
		cli.StringFlag{
			Name:  guardianEmailFlag,
			Usage: "guardian email",
		},
		cli.StringFlag{
			Name:   guardianPasswordFlag,
			Usage:  "guardian password",
			EnvVar: "GUARDIAN_PASSWORD",
		},
	)
	return cli.Command{
		Name:        "guardian",
		Aliases:     []string{"g"},
		Usage:       "Manages guardian accounts",
		Subcommands: []cli.Command{addCmd},
	}
}

func addGuardian(c *cli.Context) error {
	email := c.String(guardianEmailFlag)
	if email == "" {
		return errors.New("email is required")
	}

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	a := auth.New(auth.NewPGStore(pg))
	g, err := a.Register(context.Background(), email, c.String(guardianPasswordFlag))
	if err != nil {
		return errors.Wrap(err, "failed to add guardian")
	}
	log.WithFields(log.Fields{
		"guardian_id": g.GuardianID,
		"email":       g.Email,
	}).Info("guardian added")
	return nil
}
