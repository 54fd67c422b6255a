package migrations

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/meghashyamc/sitesearch/logger"
)

var ErrNothingToRevert = errors.New("no applied migrations to revert")

// Migration ids sort in the order migrations are applied.
type Migration struct {
	ID   string
	Up   func(store kvdb.DB) error
	Down func(store kvdb.DB) error
}

func collectionMigration(id string, collection Collection) Migration {
	return Migration{
		ID: id,
		Up: func(store kvdb.DB) error {
			return saveCollection(store, collection)
		},
		Down: func(store kvdb.DB) error {
			return deleteCollection(store, collection.Name)
		},
	}
}

type Migrator struct {
	logger     logger.Logger
	store      kvdb.DB
	migrations []Migration
}

func NewMigrator(logger logger.Logger, store kvdb.DB, migrations []Migration) *Migrator {
	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return &Migrator{logger: logger, store: store, migrations: sorted}
}

// Applied lists the ids of applied migrations, oldest first.
func (m *Migrator) Applied() ([]string, error) {
	applied, err := m.store.GetAllKeys(kvdb.MigrationsBucket)
	if err != nil {
		m.logger.Error("could not list applied migrations", "err", err.Error())
		return nil, err
	}
	return applied, nil
}

// Up applies every pending migration in order and returns the ids it applied.
func (m *Migrator) Up() ([]string, error) {
	applied, err := m.Applied()
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, migration := range m.migrations {
		if slices.Contains(applied, migration.ID) {
			continue
		}
		if err := migration.Up(m.store); err != nil {
			m.logger.Error("migration failed", "id", migration.ID, "err", err.Error())
			return ran, fmt.Errorf("migration %s failed: %w", migration.ID, err)
		}
		if err := m.store.Set(kvdb.MigrationsBucket, migration.ID, time.Now().UTC().Format(time.RFC3339)); err != nil {
			m.logger.Error("could not record migration", "id", migration.ID, "err", err.Error())
			return ran, err
		}
		m.logger.Info("applied migration", "id", migration.ID)
		ran = append(ran, migration.ID)
	}
	return ran, nil
}

// Down reverts the most recently applied migration and returns its id.
func (m *Migrator) Down() (string, error) {
	applied, err := m.Applied()
	if err != nil {
		return "", err
	}
	if len(applied) == 0 {
		return "", ErrNothingToRevert
	}

	latest := applied[len(applied)-1]
	i := slices.IndexFunc(m.migrations, func(migration Migration) bool { return migration.ID == latest })
	if i < 0 {
		m.logger.Error("applied migration is unknown", "id", latest)
		return "", fmt.Errorf("applied migration %s is unknown", latest)
	}

	if err := m.migrations[i].Down(m.store); err != nil {
		m.logger.Error("migration revert failed", "id", latest, "err", err.Error())
		return "", fmt.Errorf("reverting migration %s failed: %w", latest, err)
	}
	if err := m.store.Delete(kvdb.MigrationsBucket, latest); err != nil {
		m.logger.Error("could not forget migration", "id", latest, "err", err.Error())
		return "", err
	}
	m.logger.Info("reverted migration", "id", latest)
	return latest, nil
}
