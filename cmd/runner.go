package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setsmith/internal/artwork"
	"github.com/desertthunder/setsmith/internal/repositories"
	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	gateway    services.Gateway
	session    *shared.Session
	logger     *log.Logger
	output     io.Writer

	db     *sql.DB
	covers *repositories.CoverRepository
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Gateway is built from the loaded config in [Runner.Before].
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Gateway    services.Gateway
	Session    *shared.Session
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Session == nil {
		opts.Session = shared.NewSession(false)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		gateway:    opts.Gateway,
		session:    opts.Session,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, genresCommand, setCommand, favoritesCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads config.toml and the environment, then builds the gateway.
//
// A missing config file is not an error; defaults apply.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
			r.logger.Debug("loaded config", "path", r.configPath)
		}
	}

	if err := shared.LoadEnv(); err != nil {
		r.logger.Warn("failed to load .env", "error", err)
	}
	shared.ApplyEnv(r.config)

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	if r.gateway == nil {
		gw, err := r.newGateway()
		if err != nil {
			return ctx, err
		}
		r.gateway = gw
	}
	return ctx, nil
}

func (r *Runner) newGateway() (services.Gateway, error) {
	client, err := services.NewSessionClient(
		r.config.Backend.BaseURL,
		r.config.Credentials.SessionCookie,
		r.config.Backend.Timeout(),
	)
	if err != nil {
		return nil, err
	}
	api := services.NewAPIService(r.config.Backend.BaseURL, client, shared.WithLogger(r.logger, "component", "gateway"))
	return services.NewCatalogService(api), nil
}

// coverSource returns the cover loader backed by the sqlite cover cache, opening it on first use.
func (r *Runner) coverSource() (artwork.Source, error) {
	if r.covers == nil {
		db, err := shared.OpenCache(r.config.Cache)
		if err != nil {
			return nil, err
		}
		r.db = db
		r.covers = repositories.NewCoverRepository(db)
	}
	return artwork.NewCachedSource(r.covers, artwork.NewHTTPSource(nil), r.logger), nil
}

// Close releases the cover cache.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.covers = nil, nil
	return err
}

func (r *Runner) saveConfig() error {
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}
