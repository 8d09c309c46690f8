package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/dmitrijs2005/notekeeper/internal/client/migrations"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/notesrepo"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/settingsrepo"
	"github.com/dmitrijs2005/notekeeper/internal/filex"
)

// Repositories bundles the local-store repositories the client works with.
type Repositories struct {
	Notes    notesrepo.Repository
	Settings settingsrepo.Repository
	DB       *sql.DB
}

// RunMigrations applies the embedded goose migrations to the local database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local SQLite database at dsn,
// migrates it and returns the repositories bound to it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if _, err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	return &Repositories{
		Notes:    notesrepo.NewSQLiteRepository(db),
		Settings: settingsrepo.NewSQLiteRepository(db),
		DB:       db,
	}, nil
}
