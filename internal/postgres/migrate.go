package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.up.sql
var migrationFS embed.FS

// Migration is one embedded schema file
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the embedded schema files in apply order
func Migrations() ([]Migration, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		b, err := migrationFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		out = append(out, Migration{Name: strings.TrimPrefix(name, "migrations/"), SQL: string(b)})
	}
	return out, nil
}

// Migrate applies every embedded migration inside one transaction. The schema is
// written with IF NOT EXISTS so re-running is safe.
func (db *DB) Migrate(ctx context.Context) error {
	migrations, err := Migrations()
	if err != nil {
		return err
	}

	return db.WithTx(ctx, func(ctx context.Context) error {
		for _, m := range migrations {
			db.logger.Infow("applying migration", "name", m.Name)
			if _, err := db.ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", m.Name, err)
			}
		}
		return nil
	})
}
