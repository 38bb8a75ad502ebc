package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore is a SQL-backed store.
// It works with any database/sql driver for MySQL or SQLite. The table
// schema is created by EnsureSchema:
//
//	CREATE TABLE storefront_kv (
//	    k VARCHAR(255) NOT NULL PRIMARY KEY,
//	    v MEDIUMTEXT NOT NULL,
//	    updated_at TIMESTAMP NOT NULL
//	);
type SQLStore struct {
	db        *sql.DB
	tableName string
	dialect   SQLDialect
}

// SQLDialect represents the SQL dialect for query generation.
type SQLDialect int

const (
	// DialectMySQL uses MySQL syntax.
	DialectMySQL SQLDialect = iota
	// DialectSQLite uses SQLite syntax.
	DialectSQLite
)

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) (SQLDialect, error) {
	switch driver {
	case "mysql":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return 0, fmt.Errorf("kvstore: unsupported sql driver %q", driver)
	}
}

// SQLStoreOption configures SQLStore behavior.
type SQLStoreOption func(*SQLStore)

// WithSQLTableName sets the table name.
// Default: "storefront_kv".
func WithSQLTableName(name string) SQLStoreOption {
	return func(s *SQLStore) {
		s.tableName = name
	}
}

// WithSQLDialect sets the SQL dialect for query generation.
// Default: DialectMySQL.
func WithSQLDialect(dialect SQLDialect) SQLStoreOption {
	return func(s *SQLStore) {
		s.dialect = dialect
	}
}

// NewSQLStore creates a new SQL-backed store.
func NewSQLStore(db *sql.DB, opts ...SQLStoreOption) *SQLStore {
	s := &SQLStore{
		db:        db,
		tableName: "storefront_kv",
		dialect:   DialectMySQL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	var query string
	switch s.dialect {
	case DialectMySQL:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				k VARCHAR(255) NOT NULL PRIMARY KEY,
				v MEDIUMTEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`, s.tableName)
	case DialectSQLite:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				k TEXT NOT NULL PRIMARY KEY,
				v TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`, s.tableName)
	}

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Get returns the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := fmt.Sprintf(`SELECT v FROM %s WHERE k = ?`, s.tableName)

	var v string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	var query string
	switch s.dialect {
	case DialectMySQL:
		query = fmt.Sprintf(`
			INSERT INTO %s (k, v, updated_at)
			VALUES (?, ?, NOW())
			ON DUPLICATE KEY UPDATE
				v = VALUES(v),
				updated_at = NOW()
		`, s.tableName)
	case DialectSQLite:
		query = fmt.Sprintf(`
			INSERT INTO %s (k, v, updated_at)
			VALUES (?, ?, datetime('now'))
			ON CONFLICT(k) DO UPDATE SET
				v = excluded.v,
				updated_at = excluded.updated_at
		`, s.tableName)
	}

	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

// Remove deletes key.
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE k = ?`, s.tableName)
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// TableName returns the table the store writes to.
func (s *SQLStore) TableName() string {
	return s.tableName
}
