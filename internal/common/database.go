package common

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Wait this long for a locked database before giving up on a statement
const busyTimeoutMs = 5000

// A store operation that could not be completed.
// Op is the name of the operation as seen by the caller
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// A file backed sqlite database.
// There is no pool: every call opens its own connection,
// runs a single statement and releases the connection again
type Database struct {
	Filename string
}

func NewDatabase(filename string) Database {
	return Database{Filename: filename}
}

func (db *Database) dsn() string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", db.Filename, busyTimeoutMs)
}

func (db *Database) open(op string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", db.dsn())
	if err != nil {
		return nil, &StorageError{op, err}
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

// Execute a statement that returns no rows
func (db *Database) Exec(op string, query string, args ...any) error {

	conn, err := db.open(op)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Exec(query, args...); err != nil {
		log.Debug().Msg(fmt.Sprintf("Statement %s failed on %s", op, db.Filename))
		return &StorageError{op, err}
	}
	return nil
}

// Run a query and hand every resulting row to scan
func (db *Database) Query(op string, scan func(rows *sql.Rows) error, query string, args ...any) error {

	conn, err := db.open(op)
	if err != nil {
		return err
	}
	defer conn.Close()

	rows, err := conn.Query(query, args...)
	if err != nil {
		log.Debug().Msg(fmt.Sprintf("Query %s failed on %s", op, db.Filename))
		return &StorageError{op, err}
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return &StorageError{op, err}
		}
	}
	if err := rows.Err(); err != nil {
		return &StorageError{op, err}
	}
	return nil
}
