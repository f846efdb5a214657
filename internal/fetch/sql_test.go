package fetch

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/imgajeed76/lttable/internal/fixture"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/util"
)

func TestBuildSelectPostgres(t *testing.T) {
	q := Query{
		Page:          2,
		APIURL:        "/comments",
		SearchQuery:   "50%",
		ActiveFilters: Filters{"email": {"a", "b"}, "postId": {}},
		SortBy:        "email",
		SortDirection: Ascending,
	}
	plan, err := buildSelect(postgresDialect, q, []string{"id", "email"}, 10)
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}

	wantSQL := `SELECT "id", "email" FROM "comments" WHERE CAST("email" AS TEXT) IN ($1, $2) AND ` +
		`(CAST("id" AS TEXT) ILIKE $3 ESCAPE '\' OR CAST("email" AS TEXT) ILIKE $4 ESCAPE '\') ` +
		`ORDER BY "email" ASC LIMIT $5 OFFSET $6`
	if plan.Query != wantSQL {
		t.Fatalf("query =\n%s\nwant\n%s", plan.Query, wantSQL)
	}
	wantArgs := []any{"a", "b", `%50\%%`, `%50\%%`, 10, 10}
	if !reflect.DeepEqual(plan.Args, wantArgs) {
		t.Fatalf("args = %v, want %v", plan.Args, wantArgs)
	}

	wantCount := `SELECT COUNT(*) FROM "comments" WHERE CAST("email" AS TEXT) IN ($1, $2) AND ` +
		`(CAST("id" AS TEXT) ILIKE $3 ESCAPE '\' OR CAST("email" AS TEXT) ILIKE $4 ESCAPE '\')`
	if plan.CountQuery != wantCount {
		t.Fatalf("count =\n%s\nwant\n%s", plan.CountQuery, wantCount)
	}
	if len(plan.CountArgs) != 4 {
		t.Fatalf("count args = %v", plan.CountArgs)
	}
}

func TestBuildSelectSQLiteDefaults(t *testing.T) {
	plan, err := buildSelect(sqliteDialect, Query{Page: 1, APIURL: "/main.comments", SortDirection: Descending}, []string{"id"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := `SELECT "id" FROM "main"."comments" LIMIT ? OFFSET ?`; plan.Query != want {
		t.Fatalf("query = %s, want %s", plan.Query, want)
	}
	if !reflect.DeepEqual(plan.Args, []any{DefaultPageSize, 0}) {
		t.Fatalf("args = %v", plan.Args)
	}
}

func TestBuildSelectRejectsUnknownColumns(t *testing.T) {
	cols := []string{"id"}
	if _, err := buildSelect(sqliteDialect, Query{Page: 1, APIURL: "/t", SortBy: "id; DROP TABLE t"}, cols, 10); !errors.Is(err, util.ErrUnknownColumn) {
		t.Errorf("sort err = %v", err)
	}
	if _, err := buildSelect(sqliteDialect, Query{Page: 1, APIURL: "/t", ActiveFilters: Filters{"x": {"1"}}}, cols, 10); !errors.Is(err, util.ErrUnknownColumn) {
		t.Errorf("filter err = %v", err)
	}
	if _, err := buildSelect(sqliteDialect, Query{Page: 1, APIURL: "/"}, cols, 10); err == nil {
		t.Error("expected error for empty table name")
	}
	if _, err := buildSelect(sqliteDialect, Query{Page: 1, APIURL: "/t"}, nil, 10); !errors.Is(err, util.ErrNoColumns) {
		t.Errorf("no columns err = %v", err)
	}
}

func TestTableIdent(t *testing.T) {
	tests := map[string][]string{
		"/comments":             {"comments"},
		"comments?x=1":          {"comments"},
		"/api/v1/public.posts/": {"public", "posts"},
	}
	for in, want := range tests {
		got, err := tableIdent(in)
		if err != nil || !reflect.DeepEqual(got, want) {
			t.Errorf("tableIdent(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestColumnType(t *testing.T) {
	rows := []record.Record{
		record.New(record.Field{Key: "n", Value: record.Number(1)}, record.Field{Key: "f", Value: record.Number(1.5)},
			record.Field{Key: "b", Value: record.Bool(true)}, record.Field{Key: "m", Value: record.Number(1)}),
		record.New(record.Field{Key: "n", Value: record.Null()}, record.Field{Key: "f", Value: record.Number(2)},
			record.Field{Key: "b", Value: record.Bool(false)}, record.Field{Key: "m", Value: record.String("x")}),
	}
	want := map[string]string{"n": "BIGINT", "f": "DOUBLE PRECISION", "b": "BOOLEAN", "m": "TEXT", "absent": "TEXT"}
	for col, typ := range want {
		if got := columnType(col, rows); got != typ {
			t.Errorf("columnType(%s) = %s, want %s", col, got, typ)
		}
	}
}

func TestSQLiteSeedAndFetch(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "comments.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	cols := record.DataPaths(fixture.CommentColumns())
	var reported int
	n, err := SeedSQLite(ctx, conn, fixture.Resource, cols, "id", fixture.Comments(), func(done int) { reported = done })
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 25 || reported != 25 {
		t.Fatalf("seeded %d rows, progress reported %d", n, reported)
	}

	src := NewSQLite(conn, cols, 10)
	res, err := src.Fetch(ctx, Query{
		Page:          1,
		APIURL:        fixture.Resource,
		ActiveFilters: Filters{"postId": {"2", "3"}},
		SortBy:        "id",
		SortDirection: Descending,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := ids(res.Rows); !reflect.DeepEqual(got, []string{"15", "14", "13", "12", "11", "10", "9", "8", "7", "6"}) {
		t.Fatalf("ids = %v", got)
	}
	if res.PageCount != 1 {
		t.Fatalf("PageCount = %d, want 1", res.PageCount)
	}
	if keys := res.Rows[0].Keys(); !reflect.DeepEqual(keys, cols) {
		t.Fatalf("keys = %v, want %v", keys, cols)
	}

	res, err = src.Fetch(ctx, Query{Page: 1, APIURL: fixture.Resource, SearchQuery: "GARFIELD", SortDirection: Descending})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.Rows); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("search ids = %v", got)
	}
}

func TestSQLiteSeedTwiceKeepsOneRowPerKey(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "comments.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	cols := record.DataPaths(fixture.CommentColumns())
	if _, err := SeedSQLite(ctx, conn, fixture.Resource, cols, "id", fixture.Comments(), nil); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	n, err := SeedSQLite(ctx, conn, fixture.Resource, cols, "id", fixture.Comments(), nil)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n != 0 {
		t.Fatalf("second seed wrote %d rows, want 0", n)
	}

	var total, dup int
	if err := conn.GetContext(ctx, &total, `SELECT COUNT(*) FROM "comments"`); err != nil {
		t.Fatal(err)
	}
	if err := conn.GetContext(ctx, &dup, `SELECT COUNT(*) FROM "comments" WHERE "id" = 1`); err != nil {
		t.Fatal(err)
	}
	if total != 25 || dup != 1 {
		t.Fatalf("rows = %d, rows with id 1 = %d; want 25 and 1", total, dup)
	}
}

func TestSQLiteBooleanFilterMatchesText(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer conn.Close()

	rows := []record.Record{
		record.New(record.Field{Key: "id", Value: record.Number(1)}, record.Field{Key: "done", Value: record.Bool(true)}),
		record.New(record.Field{Key: "id", Value: record.Number(2)}, record.Field{Key: "done", Value: record.Bool(false)}),
		record.New(record.Field{Key: "id", Value: record.Number(3)}, record.Field{Key: "done", Value: record.Bool(true)}),
	}
	cols := []string{"id", "done"}
	ctx := context.Background()
	if _, err := SeedSQLite(ctx, conn, "/tasks", cols, "id", rows, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	q := Query{Page: 1, APIURL: "/tasks", ActiveFilters: Filters{"done": {"true"}}, SortBy: "id", SortDirection: Ascending}
	want := Apply(rows, q)
	res, err := NewSQLite(conn, cols, 10).Fetch(ctx, q)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := ids(res.Rows); !reflect.DeepEqual(got, ids(want)) || len(got) != 2 {
		t.Fatalf("ids = %v, want %v", got, ids(want))
	}
}
