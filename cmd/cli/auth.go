package main

import (
	"fmt"

	"github.com/mchmarny/lingopulse/pkg/auth"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	tokenFlag = &cli.StringFlag{
		Name:     "token",
		Usage:    "Inference API token",
		Required: true,
		EnvVars:  []string{auth.TokenEnvVar},
	}

	authCmd = &cli.Command{
		Name:    "auth",
		Aliases: []string{"t"},
		Usage:   "Manage the inference API token",
		Subcommands: []*cli.Command{
			{
				Name:   "set",
				Usage:  "Store the inference API token in the OS keyring",
				Action: cmdAuthSet,
				Flags: []cli.Flag{
					tokenFlag,
				},
			},
			{
				Name:   "status",
				Usage:  "Report whether an inference API token is available",
				Action: cmdAuthStatus,
			},
			{
				Name:   "clear",
				Usage:  "Remove the stored inference API token",
				Action: cmdAuthClear,
			},
		},
	}
)

func cmdAuthSet(c *cli.Context) error {
	if err := auth.SetToken(c.String(tokenFlag.Name)); err != nil {
		return errors.Wrap(err, "failed to store token")
	}
	fmt.Println("token stored")
	return nil
}

func cmdAuthStatus(c *cli.Context) error {
	_, err := auth.GetToken()
	switch {
	case err == nil:
		fmt.Println("token available")
	case errors.Is(err, auth.ErrNoToken):
		fmt.Println("no token stored")
	default:
		return errors.Wrap(err, "failed to check token")
	}
	return nil
}

func cmdAuthClear(c *cli.Context) error {
	if err := auth.DeleteToken(); err != nil {
		return errors.Wrap(err, "failed to clear token")
	}
	fmt.Println("token cleared")
	return nil
}
