// Package sqlite persists ledger documents as JSON rows in a single SQLite
// table, one row per (collection, id).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"plenio/internal/core"
	"plenio/internal/store"

	_ "modernc.org/sqlite"
)

// DB owns the connection pool shared by all collections.
type DB struct {
	db *sql.DB
}

// Open creates the database file if needed, migrates it and returns a
// handle limited to one connection so writes are serialised.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("SQLite store ready", "path", dbPath)
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Store returns the ledger collections backed by this database.
func (d *DB) Store() *store.Store {
	return &store.Store{
		Users:          NewCollection[core.UserProfile](d, store.CollectionUsers),
		PaymentMethods: NewCollection[core.PaymentMethod](d, store.CollectionPaymentMethods),
		Categories:     NewCollection[core.Category](d, store.CollectionCategories),
		Transactions:   NewCollection[core.Transaction](d, store.CollectionTransactions),
		Budgets:        NewCollection[core.Budget](d, store.CollectionBudgets),
	}
}

// Collection is one named collection inside the documents table.
type Collection[T any] struct {
	db   *sql.DB
	name string
}

var _ store.Collection[core.Budget] = (*Collection[core.Budget])(nil)

func NewCollection[T any](d *DB, name string) *Collection[T] {
	return &Collection[T]{db: d.db, name: name}
}

// fieldName guards the JSON path interpolated into queries.
var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c *Collection[T]) Set(ctx context.Context, id string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		c.name, id, string(raw))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	raw, err := c.load(ctx, c.db, id)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return doc, nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	return c.rewrite(ctx, id, func(raw []byte) ([]byte, error) {
		return store.MergeFields(raw, fields)
	})
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, c.name, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *Collection[T]) Query(ctx context.Context, filters []store.Filter, limit int) ([]T, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, data FROM documents WHERE collection = ?`)
	args := []any{c.name}
	for _, f := range filters {
		if !fieldName.MatchString(f.Field) {
			return nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		if f.Value == nil {
			fmt.Fprintf(&b, ` AND json_extract(data, '$.%s') IS NULL`, f.Field)
			continue
		}
		fmt.Fprintf(&b, ` AND json_extract(data, '$.%s') = ?`, f.Field)
		args = append(args, bindValue(f.Value))
	}
	b.WriteString(` ORDER BY rowid`)
	if limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		var doc T
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (c *Collection[T]) Increment(ctx context.Context, id, field string, delta float64) error {
	return c.rewrite(ctx, id, func(raw []byte) ([]byte, error) {
		return store.AddToField(raw, field, delta)
	})
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (c *Collection[T]) load(ctx context.Context, q queryer, id string) ([]byte, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM documents WHERE collection = ? AND id = ?`, c.name, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, err)
	}
	return []byte(data), nil
}

// rewrite applies fn to the stored document inside one transaction.
func (c *Collection[T]) rewrite(ctx context.Context, id string, fn func([]byte) ([]byte, error)) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	raw, err := c.load(ctx, tx, id)
	if err != nil {
		return err
	}
	updated, err := fn(raw)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?`,
		string(updated), c.name, id); err != nil {
		return fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	return tx.Commit()
}

// bindValue maps filter values onto what json_extract yields.
func bindValue(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case fmt.Stringer:
		return x.String()
	}
	// Named string types such as core.EntryType.
	if raw, err := json.Marshal(v); err == nil {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return v
}
