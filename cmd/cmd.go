package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// urfave/cli flags keep parse state, so each command gets its own instances.

func sessionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "session",
		Aliases: []string{"s"},
		Usage:   "Session id that owns the stored credentials",
		Sources: cli.EnvVars("PLAYLIFT_SESSION"),
	}
}

func serverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "server",
		Usage: "Base URL of a running playlift server (defaults to the configured listen address)",
	}
}

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
		&cli.StringFlag{
			Name:    "save",
			Aliases: []string{"o"},
			Usage:   "Write the finished transfer report to a file (.csv, .md, .txt or .json)",
		},
	}
}

func requestFlags() []cli.Flag {
	return []cli.Flag{
		sessionFlag(),
		&cli.StringFlag{
			Name:     "direction",
			Aliases:  []string{"d"},
			Usage:    "spotify-to-youtube or youtube-to-spotify",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "source",
			Usage:    "Source playlist id or share link",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "dest",
			Usage: "Destination playlist id or link (defaults to Liked Songs / liked videos)",
		},
	}
}

// setupCommand initializes the database and configuration
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the template",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand manages stored platform credentials
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Connect and disconnect Spotify & YouTube accounts",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize a platform in the browser and store its tokens",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "platform"},
				},
				Flags: []cli.Flag{
					sessionFlag(),
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 2 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the consent URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget every stored credential of a session",
				Flags:  []cli.Flag{sessionFlag()},
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the stored credentials of a session",
				Flags: []cli.Flag{
					sessionFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// transferCommand starts and inspects transfers
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Copy a playlist from one platform to the other",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a transfer in this process and wait for it to finish",
				Flags:  append(append([]cli.Flag{}, requestFlags()...), outputFlags()...),
				Action: r.TransferRun,
			},
			{
				Name:  "submit",
				Usage: "Submit a transfer to a running server",
				Flags: append(append([]cli.Flag{
					serverFlag(),
					&cli.BoolFlag{Name: "wait", Aliases: []string{"w"}, Usage: "Poll until the job finishes"},
					&cli.DurationFlag{Name: "interval", Usage: "Polling interval", Value: 2 * time.Second},
				}, requestFlags()...), outputFlags()...),
				Action: r.TransferSubmit,
			},
			{
				Name:  "status",
				Usage: "Show the status of a submitted job",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "job"},
				},
				Flags:  append([]cli.Flag{serverFlag()}, outputFlags()...),
				Action: r.TransferStatus,
			},
			{
				Name:  "history",
				Usage: "List recent jobs (sqlite status backend)",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Number of jobs to list", Value: 20},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.TransferHistory,
			},
		},
	}
}

// playlistsCommand lists a session's own playlists on one platform
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List your playlists on a platform to pick a transfer source or destination",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "platform"},
		},
		Flags: []cli.Flag{
			sessionFlag(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of playlists to show (0 for all)"},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true},
		},
		Action: r.Playlists,
	}
}

// serveCommand runs the HTTP API and the worker pool
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the transfer API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent transfers (overrides transfer.workers)",
			},
		},
		Action: r.Serve,
	}
}
