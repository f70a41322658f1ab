package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes config.toml from the embedded example.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		return fmt.Errorf("%w: no config path", shared.ErrMissingArgument)
	}

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		r.logger.Info("config file already exists", "path", path)
		return r.writePlain("Config already exists at %s (use --force to overwrite)\n", path)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Wrote %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'setsmith auth login' to sign in through the backend\n")
	r.writePlain("2. Or import a session with 'setsmith setup session --curl-file request.sh'\n")
	return nil
}

// SetupSession extracts the backend session cookie from a browser "Copy as cURL" command
// and saves it to the config file.
func (r *Runner) SetupSession(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var session *shared.CurlSession
	var err error

	if curlFile != "" {
		session, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		session, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	cookies, err := session.Cookies()
	if err != nil {
		return err
	}
	r.logger.Debug("captured cookies", "count", len(cookies), "origin", session.Origin)

	if err := r.storeSession(session.Cookie); err != nil {
		return err
	}

	r.writePlain("✓ Session saved (%d cookies)\n", len(cookies))
	if r.configPath != "" {
		r.writePlain("Config updated: %s\n", r.configPath)
	}
	return nil
}

// storeSession saves cookie to the config and rebuilds the backend gateway around it.
func (r *Runner) storeSession(cookie string) error {
	r.config.Credentials.SessionCookie = cookie
	if err := r.saveConfig(); err != nil {
		return err
	}

	if _, ok := r.gateway.(*services.CatalogService); !ok && r.gateway != nil {
		return nil
	}
	gw, err := r.newGateway()
	if err != nil {
		return err
	}
	r.gateway = gw
	return nil
}
