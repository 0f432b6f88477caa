package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnscopedQuery = errors.New("statement is not scoped to tenant_id = $1")

var (
	scopedPredicate = regexp.MustCompile(`\btenant_id\s*=\s*\$1\b`)
	scopedInsert    = regexp.MustCompile(`(?is)^\s*INSERT\s+INTO\s+\w+\s*\(\s*tenant_id\s*,.*\)\s*VALUES\s*\(\s*\$1\s*,`)
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type errScanner struct{ err error }

func (s errScanner) Scan(...any) error { return s.err }

// tenantQuerier is the only path repositories have to the database. It
// binds the tenant id as $1 on every statement and refuses statements that
// do not filter or insert on it.
type tenantQuerier struct {
	q        querier
	tenantID string
}

func newTenantQuerier(q querier, tenantID string) *tenantQuerier {
	return &tenantQuerier{q: q, tenantID: tenantID}
}

func (t *tenantQuerier) guard(query string) error {
	if scopedPredicate.MatchString(query) || scopedInsert.MatchString(query) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnscopedQuery, strings.Join(strings.Fields(query), " "))
}

func (t *tenantQuerier) bind(args []any) []any {
	return append([]any{t.tenantID}, args...)
}

func (t *tenantQuerier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := t.guard(query); err != nil {
		return nil, err
	}
	res, err := t.q.ExecContext(ctx, query, t.bind(args)...)
	return res, mapError(err)
}

// execOne fails with repository.ErrNotFound when no row was touched.
func (t *tenantQuerier) execOne(ctx context.Context, query string, args ...any) error {
	res, err := t.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (t *tenantQuerier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := t.guard(query); err != nil {
		return nil, err
	}
	rows, err := t.q.QueryContext(ctx, query, t.bind(args)...)
	return rows, mapError(err)
}

func (t *tenantQuerier) queryRow(ctx context.Context, query string, args ...any) scanner {
	if err := t.guard(query); err != nil {
		return errScanner{err: err}
	}
	return t.q.QueryRowContext(ctx, query, t.bind(args)...)
}

// filter accumulates optional AND clauses whose placeholders start at $2.
type filter struct {
	clauses []string
	args    []any
}

// add appends clause, which must contain exactly one %d for the placeholder.
func (f *filter) add(clause string, arg any) {
	f.args = append(f.args, arg)
	f.clauses = append(f.clauses, fmt.Sprintf(clause, len(f.args)+1))
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(f.clauses, " AND ")
}

// page appends LIMIT and OFFSET placeholders.
func (f *filter) page(limit, offset int) string {
	f.args = append(f.args, limit, offset)
	n := len(f.args) + 1
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n-1, n)
}
