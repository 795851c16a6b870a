package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Row is one table row keyed by column name.
type Row map[string]any

// DefaultPageSize is the page size for range-based reads. Callers loop until
// a page returns fewer rows than this to detect the last page.
const DefaultPageSize = 1000

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Client is a thin relational store client over a Postgres (Supabase
// compatible) database: range-based reads and batch inserts only.
type Client struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Client, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{pool: pool}, nil
}

// Pool exposes the underlying connection pool for collaborators that share
// the same database, such as the vector index.
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Client) Close() {
	c.pool.Close()
}

// SelectRange reads rows [start, end] (inclusive, zero-based) of the table,
// ordered by the first selected column so that successive ranges paginate a
// stable sequence. columns is a comma-separated list or "*".
func (c *Client) SelectRange(ctx context.Context, table, columns string, start, end int) ([]Row, error) {
	if err := validateIdent(table); err != nil {
		return nil, err
	}
	if columns != "*" {
		for _, col := range strings.Split(columns, ",") {
			if err := validateIdent(strings.TrimSpace(col)); err != nil {
				return nil, err
			}
		}
	}
	if end < start {
		return nil, fmt.Errorf("invalid range: %d..%d", start, end)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY 1 OFFSET $1 LIMIT $2", columns, table)
	rows, err := c.pool.Query(ctx, query, start, end-start+1)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var result []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", table, err)
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows of %s: %w", table, err)
	}

	return result, nil
}

// Insert appends all rows to the table in a single atomic batch. All rows
// must carry the same set of columns. No existing row is modified.
func (c *Client) Insert(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := validateIdent(table); err != nil {
		return err
	}

	// Deterministic column order taken from the first row
	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	for _, col := range columns {
		if err := validateIdent(col); err != nil {
			return err
		}
	}

	var sb strings.Builder
	args := make([]any, 0, len(rows)*len(columns))
	sb.WriteString(fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", ")))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, col := range columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			value, ok := row[col]
			if !ok {
				return fmt.Errorf("row %d is missing column %q", i, col)
			}
			args = append(args, value)
			sb.WriteString(fmt.Sprintf("$%d", len(args)))
		}
		sb.WriteString(")")
	}

	err := pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sb.String(), args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert %d rows into %s: %w", len(rows), table, err)
	}

	return nil
}

func validateIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}
