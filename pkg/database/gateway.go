package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNoFields      = errors.New("no fields to write")
	ErrDuplicate     = errors.New("duplicate key")
)

// storeError tags unique constraint violations with ErrDuplicate.
func storeError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

// Fields maps column names to values. It is used both for writes and for
// equality filters.
type Fields map[string]any

// Entity describes a table reachable through the Gateway. Columns is the full
// list returned by reads and the allow-list for written or filtered columns.
// WriteOnly columns may be written but are never read back (secrets).
type Entity struct {
	Table     string
	Key       string
	Columns   []string
	WriteOnly []string
}

func (e Entity) has(col string) bool {
	for _, c := range e.Columns {
		if c == col {
			return true
		}
	}
	for _, c := range e.WriteOnly {
		if c == col {
			return true
		}
	}
	return false
}

func (e Entity) returning() string { return strings.Join(e.Columns, ", ") }

// split orders fields by column name so generated SQL is stable.
func (e Entity) split(fields Fields) ([]string, []any, error) {
	cols := make([]string, 0, len(fields))
	for c := range fields {
		if !e.has(c) {
			return nil, nil, fmt.Errorf("%s.%s: %w", e.Table, c, ErrUnknownColumn)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = fields[c]
	}
	return cols, args, nil
}

func placeholders(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "$" + strconv.Itoa(from+i)
	}
	return out
}

// Gateway is the only write path to the relational store. It holds no state
// beyond the injected connection pool.
type Gateway struct {
	db *sqlx.DB
}

func NewGateway(db *sqlx.DB) *Gateway { return &Gateway{db: db} }

// DB exposes the pool for repositories that need hand-written queries.
func (g *Gateway) DB() *sqlx.DB { return g.db }

func (g *Gateway) Close() error { return g.db.Close() }

// Create inserts a row and returns the stored record.
func Create[T any](ctx context.Context, g *Gateway, e Entity, fields Fields) (*T, error) {
	cols, args, err := e.split(fields)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, ErrNoFields
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		e.Table, strings.Join(cols, ", "), strings.Join(placeholders(1, len(cols)), ", "), e.returning())
	var out T
	if err := g.db.QueryRowxContext(ctx, q, args...).StructScan(&out); err != nil {
		return nil, fmt.Errorf("create %s: %w", e.Table, storeError(err))
	}
	return &out, nil
}

// FindMany lists rows matching every filter column by equality. A nil or
// empty filter lists the whole table in store order.
func FindMany[T any](ctx context.Context, g *Gateway, e Entity, filter Fields) ([]T, error) {
	where, args, err := e.where(filter)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT %s FROM %s%s", e.returning(), e.Table, where)
	out := []T{}
	if err := g.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("find %s: %w", e.Table, err)
	}
	return out, nil
}

// FindOne returns the first matching row or an error wrapping sql.ErrNoRows.
func FindOne[T any](ctx context.Context, g *Gateway, e Entity, filter Fields) (*T, error) {
	where, args, err := e.where(filter)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", e.returning(), e.Table, where)
	var out T
	if err := g.db.GetContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("find %s: %w", e.Table, err)
	}
	return &out, nil
}

// Update writes fields on the row identified by id. A missing row surfaces
// as an error wrapping sql.ErrNoRows.
func Update[T any](ctx context.Context, g *Gateway, e Entity, id any, fields Fields) (*T, error) {
	cols, args, err := e.split(fields)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, ErrNoFields
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = $" + strconv.Itoa(i+1)
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		e.Table, strings.Join(sets, ", "), e.Key, len(cols)+1, e.returning())
	args = append(args, id)
	var out T
	if err := g.db.QueryRowxContext(ctx, q, args...).StructScan(&out); err != nil {
		return nil, fmt.Errorf("update %s %v: %w", e.Table, id, storeError(err))
	}
	return &out, nil
}

// Upsert inserts or, when the key already exists, overwrites the given
// columns. fields must contain the entity key.
func Upsert[T any](ctx context.Context, g *Gateway, e Entity, fields Fields) (*T, error) {
	return upsert[T](ctx, g, e, fields, "", nil)
}

// UpsertIf is Upsert where an existing row is only overwritten while its col
// holds one of allowed. A row in any other state is left untouched and the
// error wraps sql.ErrNoRows.
func UpsertIf[T any](ctx context.Context, g *Gateway, e Entity, fields Fields, col string, allowed ...any) (*T, error) {
	if !e.has(col) {
		return nil, fmt.Errorf("%s.%s: %w", e.Table, col, ErrUnknownColumn)
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("upsert %s: no allowed values for %s", e.Table, col)
	}
	return upsert[T](ctx, g, e, fields, col, allowed)
}

func upsert[T any](ctx context.Context, g *Gateway, e Entity, fields Fields, col string, allowed []any) (*T, error) {
	if _, ok := fields[e.Key]; !ok {
		return nil, fmt.Errorf("upsert %s: key %s missing", e.Table, e.Key)
	}
	cols, args, err := e.split(fields)
	if err != nil {
		return nil, err
	}
	var sets []string
	for _, c := range cols {
		if c != e.Key {
			sets = append(sets, c+" = EXCLUDED."+c)
		}
	}
	conflict := "DO NOTHING"
	if len(sets) > 0 {
		conflict = "DO UPDATE SET " + strings.Join(sets, ", ")
	}
	if col != "" {
		if len(sets) == 0 {
			return nil, fmt.Errorf("upsert %s: %w", e.Table, ErrNoFields)
		}
		conflict += fmt.Sprintf(" WHERE %s.%s IN (%s)", e.Table, col, strings.Join(placeholders(len(args)+1, len(allowed)), ", "))
		args = append(args, allowed...)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s RETURNING %s",
		e.Table, strings.Join(cols, ", "), strings.Join(placeholders(1, len(cols)), ", "), e.Key, conflict, e.returning())
	var out T
	if err := g.db.QueryRowxContext(ctx, q, args...).StructScan(&out); err != nil {
		return nil, fmt.Errorf("upsert %s: %w", e.Table, storeError(err))
	}
	return &out, nil
}

func (e Entity) where(filter Fields) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	cols, args, err := e.split(filter)
	if err != nil {
		return "", nil, err
	}
	conds := make([]string, len(cols))
	for i, c := range cols {
		conds[i] = c + " = $" + strconv.Itoa(i+1)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
