// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/setsmith/internal/server"
	"github.com/urfave/cli/v3"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// setupCommand handles configuration and session import.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write config.toml from the built-in defaults",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "session",
				Usage: "Import the backend session cookie from browser request headers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupSession,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the backend session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in through the backend and capture the session on a local callback",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "cookie-name",
						Usage: "Name of the backend session cookie",
						Value: server.DefaultSessionCookie,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the login callback",
						Value: loginTimeout,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check whether the saved session is logged in",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the saved session",
				Action: r.AuthLogout,
			},
		},
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List your playlists",
		Flags:   outputFlags(),
		Action:  r.Playlists,
	}
}

func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "List the genres found in a playlist",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Playlist ID",
				Required: true,
			},
		}, outputFlags()...),
		Action: r.Genres,
	}
}

// setCommand builds sets and exports them.
func setCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "playlist",
			Aliases:  []string{"p"},
			Usage:    "Source playlist ID or name",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Only use tracks from these genres (repeatable)",
		},
		&cli.StringFlag{
			Name:    "duration",
			Aliases: []string{"d"},
			Usage:   "Target set length in minutes",
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Name of the playlist to create",
		},
		&cli.StringFlag{
			Name:  "visibility",
			Usage: "public or private",
			Value: "public",
		},
		&cli.StringSliceFlag{
			Name:    "export",
			Aliases: []string{"e"},
			Usage:   "Write the set as txt, csv or json (repeatable or comma separated)",
		},
		&cli.BoolFlag{
			Name:  "image",
			Usage: "Render the set with cover art to setlist.png",
		},
		&cli.StringFlag{
			Name:  "title",
			Usage: "Title drawn at the top of the image",
		},
		&cli.StringFlag{
			Name:  "background",
			Usage: "Image background colour (#rrggbb)",
		},
		&cli.StringFlag{
			Name:  "title-color",
			Usage: "Image title colour (#rrggbb)",
		},
		&cli.BoolFlag{
			Name:  "bold",
			Usage: "Bold track text",
		},
		&cli.IntFlag{
			Name:  "cover-size",
			Usage: "Cover tile size in pixels (50-200)",
		},
		&cli.IntFlag{
			Name:  "text-size",
			Usage: "Track text size in pixels (10-30)",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "Directory for exported files (default: export.output_dir)",
		},
	}

	return &cli.Command{
		Name:  "set",
		Usage: "Build sets from your playlists",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create a set playlist and optionally export it",
				Flags:  append(flags, outputFlags()...),
				Action: r.SetCreate,
			},
		},
	}
}

func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Playlists from your top tracks",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist from your most played tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Number of songs (1-50)",
						Value:   "20",
					},
					&cli.StringFlag{
						Name:    "range",
						Aliases: []string{"r"},
						Usage:   "short_term, medium_term or long_term",
						Value:   "medium_term",
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Name of the playlist to create",
					},
					&cli.StringFlag{
						Name:  "visibility",
						Usage: "public or private",
						Value: "public",
					},
				},
				Action: r.FavoritesCreate,
			},
		},
	}
}

// cacheCommand manages the cover art cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the cover art cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cache size and reuse",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:  "list",
				Usage: "List cached covers, most reused first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of covers to list",
						Value: 20,
					},
					&cli.IntFlag{
						Name:  "min-hits",
						Usage: "Only list covers reused at least this often",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached cover",
				Action: r.CacheClear,
			},
			{
				Name:  "migrate",
				Usage: "Run pending cache migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest migration instead",
					},
				},
				Action: r.CacheMigrate,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where TUI logs are written",
				Value: "./tmp/setsmith-tui.log",
			},
		},
		Action: r.TUI,
	}
}
