// internal/catalog/sqlite.go
//
// SQLite mirror of the game catalogue.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Storing definitions as YAML bodies keyed by slug, and reading them back.
//
// The repository satisfies Source, so the server can play from the database
// instead of the embedded files.

package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// OpenDB opens (and creates if missing) a SQLite database.
// ":memory:" opens a private in-memory database on a single connection.
func OpenDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if dsn == ":memory:" {
		db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		// every new connection would see an empty database
		db.SetMaxOpenConns(1)
		return db, nil
	}

	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(time.Hour)
	return db, nil
}

// Migrate applies every embedded migration not yet recorded in _migrations.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.GetContext(ctx, &done, `SELECT 1 FROM _migrations WHERE name=?`, f)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Repository reads and writes definitions in the game_definitions table.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

type definitionRow struct {
	Slug        string `db:"slug"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Kind        string `db:"kind"`
	Body        string `db:"body"`
	UpdatedAt   string `db:"updated_at"`
}

const upsertDefinition = `
INSERT INTO game_definitions (slug, title, description, kind, body, updated_at)
VALUES (:slug, :title, :description, :kind, :body, :updated_at)
ON CONFLICT(slug) DO UPDATE SET
    title=excluded.title,
    description=excluded.description,
    kind=excluded.kind,
    body=excluded.body,
    updated_at=excluded.updated_at`

func (r *Repository) row(def Definition) (definitionRow, error) {
	body, err := Marshal(def)
	if err != nil {
		return definitionRow{}, fmt.Errorf("encode %s: %w", def.Slug, err)
	}
	return definitionRow{
		Slug:        def.Slug,
		Title:       def.Title,
		Description: def.Description,
		Kind:        string(def.Topology.Kind),
		Body:        string(body),
		UpdatedAt:   r.now().UTC().Format(time.RFC3339),
	}, nil
}

// Upsert validates def and stores it, replacing any previous version.
func (r *Repository) Upsert(ctx context.Context, def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	row, err := r.row(def)
	if err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, upsertDefinition, row); err != nil {
		return fmt.Errorf("upsert %s: %w", def.Slug, err)
	}
	return nil
}

// Seed stores every definition in one transaction and returns how many were written.
func (r *Repository) Seed(ctx context.Context, defs []Definition) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return 0, err
		}
		row, err := r.row(def)
		if err != nil {
			return 0, err
		}
		if _, err := tx.NamedExecContext(ctx, upsertDefinition, row); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", def.Slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(defs), nil
}

func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	out := []Summary{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT slug, title, description, kind FROM game_definitions ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, slug string) (Definition, error) {
	var row definitionRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM game_definitions WHERE slug=?`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return Definition{}, ErrNotFound
	}
	if err != nil {
		return Definition{}, fmt.Errorf("get %s: %w", slug, err)
	}
	def, err := Parse([]byte(row.Body))
	if err != nil {
		return Definition{}, fmt.Errorf("stored %s: %w", slug, err)
	}
	return def, nil
}

// Delete removes a definition. Missing slugs return ErrNotFound.
func (r *Repository) Delete(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM game_definitions WHERE slug=?`, slug)
	if err != nil {
		return fmt.Errorf("delete %s: %w", slug, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
