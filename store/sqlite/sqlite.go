package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cschleiden/go-resume/store"
	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed db/migrations/*.sql
var migrationsFS embed.FS

func NewInMemoryStore(opts ...option) (*sqliteStore, error) {
	return newSqliteStore(":memory:", opts...)
}

func NewSqliteStore(path string, opts ...option) (*sqliteStore, error) {
	return newSqliteStore(fmt.Sprintf("file:%v?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path), opts...)
}

func newSqliteStore(dsn string, opts ...option) (*sqliteStore, error) {
	options := &options{
		ApplyMigrations: true,
	}

	for _, opt := range opts {
		opt(options)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite does not support concurrent writers, and every connection to an in-memory database is a
	// separate database.
	db.SetMaxOpenConns(1)

	s := &sqliteStore{
		db: db,
	}

	if options.ApplyMigrations {
		if err := s.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

type sqliteStore struct {
	db *sql.DB
}

var _ store.Store = (*sqliteStore)(nil)

// Migrate applies any pending database migrations.
func (s *sqliteStore) Migrate() error {
	dbi, err := msqlite.WithInstance(s.db, &msqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	migrations, err := iofs.New(migrationsFS, "db/migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", migrations, "sqlite", dbi)
	if err != nil {
		return fmt.Errorf("creating migration: %w", err)
	}

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	return nil
}

func (s *sqliteStore) Get(ctx context.Context, physicalID string) (*store.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT physical_id, workflow_id, attributes, updated_at FROM `records` WHERE physical_id = ?",
		physicalID,
	)

	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRecordNotFound
		}

		return nil, fmt.Errorf("getting record: %w", err)
	}

	return r, nil
}

func (s *sqliteStore) Put(ctx context.Context, r *store.Record) error {
	attributes, err := json.Marshal(r.Attributes)
	if err != nil {
		return fmt.Errorf("marshaling attributes: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO `records` (physical_id, workflow_id, attributes, updated_at) VALUES (?, ?, ?, ?) "+
			"ON CONFLICT(physical_id) DO UPDATE SET workflow_id = excluded.workflow_id, attributes = excluded.attributes, updated_at = excluded.updated_at",
		r.PhysicalID,
		r.WorkflowID,
		string(attributes),
		r.UpdatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("storing record: %w", err)
	}

	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, physicalID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM `records` WHERE physical_id = ?", physicalID); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	return nil
}

func (s *sqliteStore) List(ctx context.Context, count int) ([]*store.Record, error) {
	if count <= 0 {
		count = -1
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT physical_id, workflow_id, attributes, updated_at FROM `records` ORDER BY updated_at DESC, physical_id LIMIT ?",
		count,
	)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	records := make([]*store.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*store.Record, error) {
	var (
		r          store.Record
		attributes string
		updatedAt  int64
	)

	if err := row.Scan(&r.PhysicalID, &r.WorkflowID, &attributes, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(attributes), &r.Attributes); err != nil {
		return nil, fmt.Errorf("unmarshaling attributes: %w", err)
	}

	if r.Attributes == nil {
		r.Attributes = map[string]string{}
	}

	r.UpdatedAt = time.Unix(0, updatedAt).UTC()

	return &r, nil
}
