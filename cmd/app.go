package main

import (
	"io"

	"github.com/meghashyamc/sitesearch/config"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/urfave/cli/v2"
)

// environment is filled in before any command runs.
type environment struct {
	cfg    *config.Config
	logger logger.Logger
	stdin  io.Reader
	stdout io.Writer
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	env := &environment{stdin: stdin, stdout: stdout}

	return &cli.App{
		Name:      "sitesearch",
		Usage:     "Content store, search corpus server and search box for a static site",
		Writer:    stdout,
		ErrWriter: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Config environment to load (local, test)",
				EnvVars: []string{"ENV"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error), overriding the config",
			},
		},
		Before: env.setup,
		Action: env.serveCommand,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the content API and the search corpus",
				Action: env.serveCommand,
			},
			{
				Name:  "migrate",
				Usage: "Manage content collections",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "Apply pending migrations",
						Action: env.migrateUpCommand,
					},
					{
						Name:   "down",
						Usage:  "Revert the latest migration",
						Action: env.migrateDownCommand,
					},
					{
						Name:   "status",
						Usage:  "List applied migrations",
						Action: env.migrateStatusCommand,
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Import a directory of markdown posts and pages",
				Action: env.importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Usage:    "Content directory to import",
						Required: true,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search a served corpus interactively, one query per line",
				Action: env.searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Corpus URL, defaults to the configured one",
					},
				},
			},
		},
	}
}

func (env *environment) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return err
	}
	env.cfg = cfg

	level := c.String("log-level")
	if level == "" {
		level = cfg.GetLogLevel()
	}
	env.logger = logger.New(level)
	return nil
}
