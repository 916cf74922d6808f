package mysql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cschleiden/go-resume/store"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	mmysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed db/migrations/*.sql
var migrationsFS embed.FS

func NewMysqlStore(host string, port int, user, password, database string, opts ...option) (*mysqlStore, error) {
	options := &options{
		ApplyMigrations: true,
	}

	for _, opt := range opts {
		opt(options)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&interpolateParams=true", user, password, host, port, database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if options.MySQLOptions != nil {
		options.MySQLOptions(db)
	}

	s := &mysqlStore{
		dsn: dsn,
		db:  db,
	}

	if options.ApplyMigrations {
		if err := s.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

type mysqlStore struct {
	dsn string
	db  *sql.DB
}

var _ store.Store = (*mysqlStore)(nil)

// Migrate applies any pending database migrations.
func (s *mysqlStore) Migrate() error {
	schemaDsn := s.dsn + "&multiStatements=true"
	db, err := sql.Open("mysql", schemaDsn)
	if err != nil {
		return fmt.Errorf("opening schema database: %w", err)
	}
	defer db.Close()

	dbi, err := mmysql.WithInstance(db, &mmysql.Config{})
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	migrations, err := iofs.New(migrationsFS, "db/migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", migrations, "mysql", dbi)
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

func (s *mysqlStore) Get(ctx context.Context, physicalID string) (*store.Record, error) {
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

func (s *mysqlStore) Put(ctx context.Context, r *store.Record) error {
	attributes, err := json.Marshal(r.Attributes)
	if err != nil {
		return fmt.Errorf("marshaling attributes: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO `records` (physical_id, workflow_id, attributes, updated_at) VALUES (?, ?, ?, ?) "+
			"ON DUPLICATE KEY UPDATE workflow_id = VALUES(workflow_id), attributes = VALUES(attributes), updated_at = VALUES(updated_at)",
		r.PhysicalID,
		r.WorkflowID,
		string(attributes),
		r.UpdatedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("storing record: %w", err)
	}

	return nil
}

func (s *mysqlStore) Delete(ctx context.Context, physicalID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM `records` WHERE physical_id = ?", physicalID); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	return nil
}

func (s *mysqlStore) List(ctx context.Context, count int) ([]*store.Record, error) {
	query := "SELECT physical_id, workflow_id, attributes, updated_at FROM `records` ORDER BY updated_at DESC, physical_id"
	args := []any{}
	if count > 0 {
		query += " LIMIT ?"
		args = append(args, count)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *mysqlStore) Close() error {
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
