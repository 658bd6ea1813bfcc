package repositories

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrInsufficientStock is returned when a guarded stock decrement would
	// drive an item's stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx
// This allows repository methods to be used within transactions or with a direct DB connection.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// Tx is the transactional subset services work with.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// DB is the connection-pool surface services and repositories depend on.
// Satisfied by the wrapper returned from NewDB; service tests substitute
// in-memory fakes.
type DB interface {
	SQLExecutor
	Begin() (Tx, error)
}

type sqlDB struct {
	*sql.DB
}

// NewDB wraps a *sql.DB so its transactions satisfy the Tx interface.
func NewDB(db *sql.DB) DB {
	return sqlDB{db}
}

func (d sqlDB) Begin() (Tx, error) {
	tx, err := d.DB.Begin()
	if err != nil {
		return nil, err
	}
	return tx, nil
}
