package fetch

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/imgajeed76/lttable/internal/db"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
)

// createTableSQL builds a CREATE TABLE IF NOT EXISTS statement whose column
// types are inferred from the records: integral numbers become BIGINT,
// other numbers DOUBLE PRECISION, booleans BOOLEAN, the rest TEXT. The key
// column, when it is one of columns, is the primary key.
func createTableSQL(d dialect, table []string, columns []string, key string, records []record.Record) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		typ := columnType(c, records)
		if typ == "BOOLEAN" && d.boolText {
			typ = "TEXT"
		}
		defs[i] = d.quote(c) + " " + typ
		if c == key {
			defs[i] += " PRIMARY KEY"
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.quote(table...), strings.Join(defs, ", "))
}

func columnType(col string, records []record.Record) string {
	kind := record.KindNull
	integral := true
	for _, r := range records {
		v, ok := r.Get(col)
		if !ok || v.IsNull() {
			continue
		}
		if kind == record.KindNull {
			kind = v.Kind()
		} else if kind != v.Kind() {
			return "TEXT"
		}
		if n, ok := v.AsNumber(); ok && n != math.Trunc(n) {
			integral = false
		}
	}
	switch kind {
	case record.KindNumber:
		if integral {
			return "BIGINT"
		}
		return "DOUBLE PRECISION"
	case record.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func insertSQL(d dialect, table []string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.quote(c)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING", d.quote(table...), strings.Join(quoted, ", "), marks)
	return sqlx.Rebind(d.bind, q)
}

func insertArgs(d dialect, r record.Record, columns []string) []any {
	args := make([]any, len(columns))
	for i, c := range columns {
		v, _ := r.Get(c)
		switch v.Kind() {
		case record.KindString:
			args[i], _ = v.AsString()
		case record.KindNumber:
			n, _ := v.AsNumber()
			if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
				args[i] = int64(n)
			} else {
				args[i] = n
			}
		case record.KindBool:
			b, _ := v.AsBool()
			if d.boolText {
				args[i] = strconv.FormatBool(b)
			} else {
				args[i] = b
			}
		default:
			args[i] = nil
		}
	}
	return args
}

// Progress is called after each inserted row with the running count.
type Progress func(done int)

func (p Progress) report(done int) {
	if p != nil {
		p(done)
	}
}

// SeedSQLite creates the table named by apiURL if needed and inserts
// records keyed by key. Rows whose key is already present are skipped, so
// seeding twice leaves the table as it was. It returns the number of rows
// written.
func SeedSQLite(ctx context.Context, conn *sqlx.DB, apiURL string, columns []string, key string, records []record.Record, progress Progress) (int, error) {
	table, err := tableIdent(apiURL)
	if err != nil {
		return 0, err
	}
	if _, err := conn.ExecContext(ctx, createTableSQL(sqliteDialect, table, columns, key, records)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt := insertSQL(sqliteDialect, table, columns)
	var written int64
	for i, r := range records {
		res, err := tx.ExecContext(ctx, stmt, insertArgs(sqliteDialect, r, columns)...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += n
		}
		progress.report(i + 1)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(written), nil
}

// SeedPostgres creates the table named by apiURL if needed and inserts
// records keyed by key in one transaction, skipping keys already present.
func SeedPostgres(ctx context.Context, conn *db.DB, apiURL string, columns []string, key string, records []record.Record, progress Progress) (int, error) {
	table, err := tableIdent(apiURL)
	if err != nil {
		return 0, err
	}
	if err := conn.Exec(ctx, createTableSQL(postgresDialect, table, columns, key, records)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	stmt := insertSQL(postgresDialect, table, columns)
	var written int64
	err = conn.WithTx(ctx, func(tx pgx.Tx) error {
		for i, r := range records {
			tag, err := tx.Exec(ctx, stmt, insertArgs(postgresDialect, r, columns)...)
			if err != nil {
				return fmt.Errorf("insert: %w", err)
			}
			written += tag.RowsAffected()
			progress.report(i + 1)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(written), nil
}
