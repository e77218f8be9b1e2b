// Package commands provides the CLI command definitions for AssetWatch.
package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/shubhamdasnadas/assetwatch/internal/app"
)

// New creates the root CLI command with all subcommands.
func New(version, commit, date string) *cli.Command {
	return &cli.Command{
		Name:    "assetwatch",
		Usage:   "IT asset inventory with threshold alerts and monitoring charts",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("ASSETWATCH_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(version),
			versionCommand(version, commit, date),
		},
	}
}

func serveCommand(version string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the HTTP server",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.New(app.Options{
				ConfigPath: cmd.String("config"),
				Version:    version,
			})
			if err != nil {
				return err
			}

			if err := a.Initialize(ctx); err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- a.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return a.Shutdown(context.Background())
			}
		},
	}
}

func versionCommand(version, commit, date string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "show version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("assetwatch version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			return nil
		},
	}
}
