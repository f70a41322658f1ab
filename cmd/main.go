package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger, ConfigPath: "config.toml"})
	defer runner.Close()

	app := &cli.Command{
		Name:    "setsmith",
		Usage:   "Build DJ sets from your Spotify playlists",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   runner.Before,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrAuthRequired) {
			fmt.Fprintln(os.Stderr, shared.UserMessage(err))
			runner.Close()
			os.Exit(1)
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
