package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/meghashyamc/sitesearch/api"
	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/meghashyamc/sitesearch/db/migrations"
	"github.com/meghashyamc/sitesearch/services/content"
	"github.com/meghashyamc/sitesearch/services/imports"
	"github.com/meghashyamc/sitesearch/services/shortcode"
	"github.com/meghashyamc/sitesearch/validation"
	"github.com/urfave/cli/v2"
)

func (env *environment) serveCommand(c *cli.Context) error {
	return api.Run(c.Context, env.cfg, env.logger)
}

func (env *environment) openStore() (*kvdb.BoltDB, *migrations.Migrator, error) {
	store, err := kvdb.New(env.logger, env.cfg.GetKVDBPath())
	if err != nil {
		return nil, nil, err
	}
	return store, migrations.NewMigrator(env.logger, store, migrations.All()), nil
}

func (env *environment) migrateUpCommand(c *cli.Context) error {
	store, migrator, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ran, err := migrator.Up()
	for _, id := range ran {
		fmt.Fprintf(env.stdout, "applied %s\n", id)
	}
	if err != nil {
		return err
	}
	if len(ran) == 0 {
		fmt.Fprintln(env.stdout, "nothing to apply")
	}
	return nil
}

func (env *environment) migrateDownCommand(c *cli.Context) error {
	store, migrator, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := migrator.Down()
	if errors.Is(err, migrations.ErrNothingToRevert) {
		fmt.Fprintln(env.stdout, "nothing to revert")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "reverted %s\n", id)
	return nil
}

func (env *environment) migrateStatusCommand(c *cli.Context) error {
	store, migrator, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	applied, err := migrator.Applied()
	if err != nil {
		return err
	}
	for _, migration := range migrations.All() {
		state := "pending"
		if slices.Contains(applied, migration.ID) {
			state = "applied"
		}
		fmt.Fprintf(env.stdout, "%-8s %s\n", state, migration.ID)
	}
	return nil
}

func (env *environment) importCommand(c *cli.Context) error {
	root, err := filepath.Abs(c.String("dir"))
	if err != nil {
		return err
	}

	store, migrator, err := env.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := migrator.Up(); err != nil {
		return err
	}

	validator, err := validation.New(env.logger)
	if err != nil {
		return err
	}
	request := struct {
		Path string `json:"path" validate:"valid_path"`
	}{Path: root}
	if err := validator.Validate(request); err != nil {
		return fmt.Errorf("%s: %w", root, err)
	}

	shortcodes, err := shortcode.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	contentService := content.New(env.logger, store, validator, shortcodes)
	service := imports.New(ctx, env.logger, content.NewImporter(env.logger, contentService), store)
	summary, err := service.Run(ctx, root)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.stdout, "imported %d files, %d failed\n", summary.Imported, summary.Failed)
	return nil
}
