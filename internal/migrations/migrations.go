package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/hmcts/fact-admin/internal/fact_errors"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var files embed.FS

// NewProvider returns a goose provider over the embedded postgres migrations.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	migrations, err := fs.Sub(files, "sql")
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return nil, fmt.Errorf("%w, cannot load migrations, %w", fact_errors.ErrInternal, err)
	}
	return provider, nil
}

// Apply runs every migration not yet recorded in the database and returns how
// many were applied.
func Apply(ctx context.Context, db *sql.DB) (int, error) {
	provider, err := NewProvider(db)
	if err != nil {
		return 0, err
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		log.WithFields(log.Fields{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
		}).Info("migration applied")
	}
	if err != nil {
		return len(results), fmt.Errorf("%w, migration failed, %w", fact_errors.ErrInternal, err)
	}
	return len(results), nil
}
