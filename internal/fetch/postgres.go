package fetch

import (
	"context"
	"fmt"

	"github.com/imgajeed76/lttable/internal/db"
	"github.com/imgajeed76/lttable/internal/logger"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"
)

// Postgres serves rows from a PostgreSQL table named by the query's API URL
// ("/comments" reads table comments, "/public.comments" is schema-qualified).
type Postgres struct {
	db       *db.DB
	columns  []string
	pageSize int
}

// NewPostgres returns a Postgres source reading the given columns.
func NewPostgres(conn *db.DB, columns []string, pageSize int) *Postgres {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Postgres{db: conn, columns: columns, pageSize: pageSize}
}

// Fetch implements Fetcher.
func (p *Postgres) Fetch(ctx context.Context, q Query) (Result, error) {
	plan, err := buildSelect(postgresDialect, q, p.columns, p.pageSize)
	if err != nil {
		return Result{}, err
	}
	logger.Log.WithFields(logrus.Fields{"request": RequestID(ctx), "sql": plan.Query}).Debug("postgres fetch")

	rows, err := p.db.Query(ctx, plan.Query, plan.Args...)
	if err != nil {
		return Result{}, fmt.Errorf("query %s: %w", q.APIURL, err)
	}
	defer rows.Close()

	out, err := collectPGRows(rows)
	if err != nil {
		return Result{}, err
	}

	var total int64
	if err := p.db.QueryRow(ctx, plan.CountQuery, plan.CountArgs...).Scan(&total); err != nil {
		return Result{}, fmt.Errorf("count %s: %w", q.APIURL, err)
	}

	return Result{Rows: out, PageCount: PageCount(int(total), p.pageSize)}, nil
}

func collectPGRows(rows pgx.Rows) ([]record.Record, error) {
	fields := rows.FieldDescriptions()
	var out []record.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make([]record.Field, len(values))
		for i, v := range values {
			rec[i] = record.Field{Key: fields[i].Name, Value: pgValue(v)}
		}
		out = append(out, record.New(rec...))
	}
	return out, rows.Err()
}

// pgValue converts pgx types that FromAny does not know about.
func pgValue(v any) record.Value {
	switch val := v.(type) {
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return record.Null()
		}
		return record.Number(f.Float64)
	case [16]byte:
		return record.String(fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16]))
	}
	return record.FromAny(v)
}
