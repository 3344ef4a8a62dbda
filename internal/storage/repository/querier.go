// Package repository provides data access for players, matches, stat
// records and scoring configurations.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so repositories can
// run inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// statColumns lists the count columns in canonical statistic order.
var statColumns = func() []string {
	cols := make([]string, 0, rugby.NumStatistics)
	for _, s := range rugby.Statistics() {
		cols = append(cols, s.Key())
	}
	return cols
}()

// statColumnList returns the count columns, optionally prefixed by a table alias.
func statColumnList(alias string) string {
	if alias == "" {
		return strings.Join(statColumns, ", ")
	}
	prefixed := make([]string, len(statColumns))
	for i, c := range statColumns {
		prefixed[i] = alias + "." + c
	}
	return strings.Join(prefixed, ", ")
}

// placeholders returns n comma separated "?" markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func intArgs(values []int) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
