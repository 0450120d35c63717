package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// MigrationManager collects the schema directories each module embeds
// and applies them with goose. Schemas run in registration order, so a
// module depending on another's tables must be loaded after it. Each
// module tracks its versions in its own table to keep numbering
// independent across modules.
type MigrationManager interface {
	RegisterSchema(module string, fsys *embed.FS, dir string)
	Run(ctx context.Context) error
}

type schemaSource struct {
	module string
	fsys   *embed.FS
	dir    string
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []schemaSource
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

func (m *migrationManager) RegisterSchema(module string, fsys *embed.FS, dir string) {
	m.schemas = append(m.schemas, schemaSource{module: module, fsys: fsys, dir: dir})
}

func (m *migrationManager) Run(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(m.pool)
	defer func() { _ = db.Close() }()

	for _, src := range m.schemas {
		sub, err := fs.Sub(src.fsys, src.dir)
		if err != nil {
			return fmt.Errorf("schema dir %s: %w", src.dir, err)
		}
		store, err := database.NewStore(database.DialectPostgres, fmt.Sprintf("goose_db_version_%s", src.module))
		if err != nil {
			return err
		}
		provider, err := goose.NewProvider("", db, sub, goose.WithStore(store))
		if err != nil {
			return fmt.Errorf("migration provider for %s: %w", src.module, err)
		}
		if _, err := provider.Up(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", src.module, err)
		}
	}
	return nil
}
