package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"greeter"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB represents the database connection.
type DB struct {
	db *sqlx.DB

	// Datasource name.
	DSN string
}

// Tx wraps the SQL Tx object so repository helpers can hang off it.
type Tx struct {
	*sqlx.Tx
}

// NewDB returns a new instance of DB associated with the given datasource name.
func NewDB(dsn string) *DB {
	return &DB{DSN: dsn}
}

// Open connects to the database and runs any outstanding migrations.
func (db *DB) Open() (err error) {
	if db.DSN == "" {
		return fmt.Errorf("dsn required")
	}

	if db.db, err = sqlx.Connect("postgres", db.DSN); err != nil {
		return err
	}

	if err := db.migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// beginTx starts a transaction bound to ctx and returns a wrapper Tx type.
func (db *DB) beginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Tx{Tx: tx}, nil
}

// View runs fn inside a read-only transaction. The transaction is always
// rolled back since there is nothing to commit.
func (db *DB) View(ctx context.Context, fn func(repo greeter.GreeterRepository) error) error {
	tx, err := db.beginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	return fn(&GreeterRepository{tx: tx})
}

// Update runs fn inside a read-write transaction and commits if fn succeeds.
func (db *DB) Update(ctx context.Context, fn func(repo greeter.GreeterRepository) error) error {
	tx, err := db.beginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&GreeterRepository{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// migrate updates the connected database by running any outstanding migration scripts.
func (db *DB) migrate() error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := postgres.WithInstance(db.db.DB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// columns returns the `db` tags of entity's fields. The tag `id,omitempty`
// marks the primary key and `-` marks fields with no underlying column; both
// are omitted from the result.
func columns(entity interface{}) ([]string, error) {
	var cols []string

	t := reflect.Indirect(reflect.ValueOf(entity)).Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		// If a field has no `db` tag then the struct is invalid and we should fail
		column, ok := field.Tag.Lookup("db")
		if !ok {
			return nil, greeter.Errorf(greeter.EINTERNAL, "Field '%s' does not contain a `db` tag.", field.Name)
		}
		if column == "id,omitempty" || column == "-" {
			continue
		}
		cols = append(cols, column)
	}
	return cols, nil
}

// insert an entity into the database. The reflect package is used to build the query from the provided entity. `entity`
// should be a pointer to the struct that should be inserted into the database. It is expected that the underlying
// struct has an int64 ID field which is assigned from the generated key.
func (tx *Tx) insert(ctx context.Context, entity interface{}, table string) error {
	cols, err := columns(entity)
	if err != nil {
		return err
	}

	// Build the SQL query to be executed from the column names that have been derived from the struct's tags and the
	// `table` argument.
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table,
		strings.Join(cols, ", "),
		":"+strings.Join(cols, ", :"),
	)

	stmt, err := tx.PrepareNamedContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var id int64
	if err := stmt.GetContext(ctx, &id, entity); err != nil {
		return err
	}

	// Assign the returned ID value to the entity.
	reflect.Indirect(reflect.ValueOf(entity)).FieldByName("ID").SetInt(id)

	return nil
}

// update writes every column of entity to the row matching its ID. Returns
// ENOTFOUND if no row matches.
func (tx *Tx) update(ctx context.Context, entity interface{}, table string) error {
	cols, err := columns(entity)
	if err != nil {
		return err
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = :%s", col, col)
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", table, strings.Join(sets, ", "))

	result, err := tx.NamedExecContext(ctx, q, entity)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return greeter.Errorf(greeter.ENOTFOUND, "Record not found in %s.", table)
	}
	return nil
}
