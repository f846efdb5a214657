package fetch

import (
	"context"
	"fmt"

	"github.com/imgajeed76/lttable/internal/logger"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite serves rows from a table in a SQLite database file. The table is
// named by the query's API URL, as for Postgres.
type SQLite struct {
	db       *sqlx.DB
	columns  []string
	pageSize int
}

// OpenSQLite opens the database at dsn ("comments.db" or
// "file:comments.db?mode=ro").
func OpenSQLite(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewSQLite returns a SQLite source reading the given columns.
func NewSQLite(db *sqlx.DB, columns []string, pageSize int) *SQLite {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &SQLite{db: db, columns: columns, pageSize: pageSize}
}

// Fetch implements Fetcher.
func (s *SQLite) Fetch(ctx context.Context, q Query) (Result, error) {
	plan, err := buildSelect(sqliteDialect, q, s.columns, s.pageSize)
	if err != nil {
		return Result{}, err
	}
	logger.Log.WithFields(logrus.Fields{"request": RequestID(ctx), "sql": plan.Query}).Debug("sqlite fetch")

	rows, err := s.db.QueryxContext(ctx, plan.Query, plan.Args...)
	if err != nil {
		return Result{}, fmt.Errorf("query %s: %w", q.APIURL, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}
	var out []record.Record
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return Result{}, err
		}
		fields := make([]record.Field, len(values))
		for i, v := range values {
			fields[i] = record.Field{Key: names[i], Value: record.FromAny(v)}
		}
		out = append(out, record.New(fields...))
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	var total int
	if err := s.db.GetContext(ctx, &total, plan.CountQuery, plan.CountArgs...); err != nil {
		return Result{}, fmt.Errorf("count %s: %w", q.APIURL, err)
	}

	return Result{Rows: out, PageCount: PageCount(total, s.pageSize)}, nil
}
