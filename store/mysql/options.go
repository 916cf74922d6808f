package mysql

import "database/sql"

type options struct {
	// ApplyMigrations automatically applies database migrations on startup.
	ApplyMigrations bool

	// MySQLOptions allows tuning the connection pool.
	MySQLOptions func(db *sql.DB)
}

type option func(*options)

// WithApplyMigrations automatically applies database migrations on startup.
func WithApplyMigrations(applyMigrations bool) option {
	return func(o *options) {
		o.ApplyMigrations = applyMigrations
	}
}

// WithMySQLOptions allows to pass a custom function to configure the database connection.
func WithMySQLOptions(f func(db *sql.DB)) option {
	return func(o *options) {
		o.MySQLOptions = f
	}
}
