package db

import (
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	embeddedmigrations "github.com/terraincognita07/gardenweeks/migrations"
	"gorm.io/gorm"
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.sql$`)

type migration struct {
	Version int
	Name    string
	SQL     string
}

func applyEmbeddedMigrations(database *gorm.DB) error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := database.Exec(createTableSQL).Error; err != nil {
		return errors.Wrap(err, "create schema_migrations table")
	}

	pending, err := loadMigrations(embeddedmigrations.Files)
	if err != nil {
		return err
	}

	var applied []int
	if err := database.Raw(`SELECT version FROM schema_migrations`).Scan(&applied).Error; err != nil {
		return errors.Wrap(err, "load applied migrations")
	}
	done := make(map[int]struct{}, len(applied))
	for _, version := range applied {
		done[version] = struct{}{}
	}

	for _, next := range pending {
		if _, ok := done[next.Version]; ok {
			continue
		}
		if err := applyMigration(database, next); err != nil {
			return err
		}
		log.WithField("migration", next.Name).Info("applied database migration")
	}
	return nil
}

func loadMigrations(files fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, errors.Wrap(err, "read embedded migrations")
	}

	result := make([]migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || len(matches) != 2 {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, errors.Wrapf(err, "parse migration version from %s", entry.Name())
		}
		if existing, ok := seen[version]; ok {
			return nil, errors.Errorf("duplicate migration version %d in %s and %s", version, existing, entry.Name())
		}
		seen[version] = entry.Name()

		raw, err := fs.ReadFile(files, entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "read migration %s", entry.Name())
		}
		result = append(result, migration{Version: version, Name: entry.Name(), SQL: string(raw)})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

func applyMigration(database *gorm.DB, next migration) error {
	statements := splitSQLStatements(next.SQL)
	if len(statements) == 0 {
		return errors.Errorf("migration %s has no SQL statements", next.Name)
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			if err := tx.Exec(statement).Error; err != nil {
				return errors.Wrapf(err, "execute migration %s statement %q", next.Name, statement)
			}
		}
		if err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`, next.Version, next.Name).Error; err != nil {
			return errors.Wrapf(err, "record migration %s", next.Name)
		}
		return nil
	})
}

func splitSQLStatements(sqlText string) []string {
	parts := strings.Split(sqlText, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
