package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	var configFile string
	app := &cli.App{
		Name:  "impronta-api",
		Usage: "Account and session API for the Impronta gallery",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to a config file (yaml, json or toml)",
				EnvVars:     []string{"IMPRONTA_CONFIG"},
				Destination: &configFile,
			},
		},
		Commands: []*cli.Command{
			serveCmd(&configFile),
			migrateCmd(&configFile),
			checkDBCmd(&configFile),
		},
		DefaultCommand: "serve",
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
