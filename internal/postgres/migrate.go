package postgres

import (
	"context"
	"embed"
	"fmt"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsTable = "schema_migrations"

// Migrate applies every pending schema migration
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.setupGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB.DB, "migrations"); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to apply database migrations").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// MigrationStatus logs the applied state of every migration without changing anything
func (db *DB) MigrationStatus(ctx context.Context) error {
	if err := db.setupGoose(); err != nil {
		return err
	}
	if err := goose.StatusContext(ctx, db.DB.DB, "migrations"); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read migration status").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (db *DB) setupGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetTableName(migrationsTable)
	goose.SetLogger(&gooseLogger{logger: db.logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return ierr.WithError(err).
			WithHint("Unsupported migration dialect").
			Mark(ierr.ErrSystem)
	}
	return nil
}

// gooseLogger routes goose output through the zap logger
type gooseLogger struct {
	logger *logger.Logger
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}
