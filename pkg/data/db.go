package data

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "data.db"

	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// DB wraps sql.DB with the driver dialect so the same query text runs
// against both the embedded store and a client/server store.
type DB struct {
	*sql.DB
	driver string
}

// Open opens the store named by target: a postgres:// DSN opens a
// client/server store, anything else is treated as a path to the embedded
// database file. The schema is applied on first use either way.
func Open(target string) (*DB, error) {
	if target == "" {
		return nil, errors.New("database target not specified")
	}

	if strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://") {
		conn, err := sql.Open(driverPostgres, target)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open postgres database")
		}
		db := &DB{DB: conn, driver: driverPostgres}
		if err := db.createSchema(); err != nil {
			conn.Close()
			return nil, err
		}
		return db, nil
	}

	if err := Init(target); err != nil {
		return nil, err
	}
	return GetDB(target)
}

// Init initializes the embedded database for a given file path, creating
// the schema when the file does not yet exist.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		db, err := GetDB(dbFilePath)
		if err != nil {
			return errors.Wrapf(err, "error opening database: %s", dbFilePath)
		}
		defer db.Close()

		log.Debug("creating db schema...")
		if err := db.createSchema(); err != nil {
			return errors.Wrapf(err, "failed to create database schema in: %s", dbFilePath)
		}
		log.Debug("db schema created")
	}

	return nil
}

func GetDB(path string) (*DB, error) {
	conn, err := sql.Open(driverSQLite, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	// single writer, the driver serializes access to the file
	conn.SetMaxOpenConns(1)
	return &DB{DB: conn, driver: driverSQLite}, nil
}

func (d *DB) createSchema() error {
	name := "sql/ddl.sql"
	if d.driver == driverPostgres {
		name = "sql/ddl_postgres.sql"
	}
	b, err := f.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := d.Exec(string(b)); err != nil {
		return errors.Wrap(err, "failed to apply database schema")
	}
	return nil
}

// rebind rewrites ? placeholders into the $n form postgres expects.
func (d *DB) rebind(query string) string {
	if d.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Contains checks for val in list
func Contains[T comparable](list []T, val T) bool {
	if list == nil {
		return false
	}
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
