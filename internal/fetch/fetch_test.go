package fetch

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/imgajeed76/lttable/internal/fixture"
	"github.com/imgajeed76/lttable/internal/record"
)

func ids(rows []record.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		v, _ := r.Get("id")
		out[i] = v.String()
	}
	return out
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection(" ASC "); err != nil || d != Ascending {
		t.Fatalf("ParseDirection(ASC) = %q, %v", d, err)
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Fatal("expected error for up")
	}
	if Descending.Flip() != Ascending || Ascending.Flip() != Descending {
		t.Fatal("Flip is not an involution")
	}
}

func TestQueryEqual(t *testing.T) {
	a := Query{Page: 1, APIURL: "/comments", ActiveFilters: Filters{"email": {"a", "b"}}, SortDirection: Descending}
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone not equal")
	}

	b.ActiveFilters["email"][0] = "z"
	if a.ActiveFilters["email"][0] != "a" {
		t.Fatal("Clone shares filter slices")
	}
	if a.Equal(b) {
		t.Fatal("different filter values compare equal")
	}

	c := a.Clone()
	c.ActiveFilters["postId"] = nil
	if a.Equal(c) {
		t.Fatal("extra filter key compares equal")
	}

	if !(Query{Page: 1}).Equal(Query{Page: 1, ActiveFilters: Filters{}}) {
		t.Fatal("nil and empty filters should compare equal")
	}
}

func TestQueryString(t *testing.T) {
	q := Query{Page: 1, APIURL: "/comments", ActiveFilters: Filters{}, SortDirection: Descending}
	if got, want := q.String(), `(1, "/comments", "", {}, "", "desc")`; got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}

	q.ActiveFilters = Filters{"postId": {"2", "3"}, "email": {"Dallas@ole.me"}}
	if got, want := q.String(), `(1, "/comments", "", {email: ["Dallas@ole.me"], postId: ["2", "3"]}, "", "desc")`; got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}
}

func TestParamsRoundTrip(t *testing.T) {
	q := Query{
		Page:          3,
		SearchQuery:   "fugit",
		ActiveFilters: Filters{"email": {"Dallas@ole.me"}, "postId": {"1", "2"}},
		SortBy:        "email",
		SortDirection: Ascending,
	}
	values := EncodeParams(q)
	if got := values[FilterPrefix+"postId"]; !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("postId filter params = %v", got)
	}

	parsed, err := url.ParseQuery(values.Encode())
	if err != nil {
		t.Fatal(err)
	}
	back, err := DecodeParams(parsed)
	if err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if !back.Equal(q) {
		t.Fatalf("round trip = %s, want %s", back, q)
	}
}

func TestDecodeParamsDefaultsAndErrors(t *testing.T) {
	q, err := DecodeParams(url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	if q.Page != 1 || q.SortDirection != DefaultDirection {
		t.Fatalf("defaults = %s", q)
	}

	for _, raw := range []string{"page=0", "page=x", "dir=sideways", "filter.=a"} {
		v, _ := url.ParseQuery(raw)
		if _, err := DecodeParams(v); err == nil {
			t.Errorf("DecodeParams(%s) expected error", raw)
		}
	}
}

func TestMemoryPagesFiltersSortsAndSearches(t *testing.T) {
	m := NewMemory(fixture.Comments(), 10)
	ctx := context.Background()

	res, err := m.Fetch(ctx, Query{Page: 3, SortDirection: Descending})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.Rows); !reflect.DeepEqual(got, []string{"21", "22", "23", "24", "25"}) {
		t.Fatalf("page 3 = %v", got)
	}
	if res.PageCount != 3 {
		t.Fatalf("PageCount = %d, want 3", res.PageCount)
	}

	res, _ = m.Fetch(ctx, Query{Page: 1, SortBy: "id", SortDirection: Descending,
		ActiveFilters: Filters{"postId": {"2"}}})
	if got := ids(res.Rows); !reflect.DeepEqual(got, []string{"10", "9", "8", "7", "6"}) {
		t.Fatalf("postId=2 desc = %v", got)
	}

	res, _ = m.Fetch(ctx, Query{Page: 1, SortBy: "email", SortDirection: Ascending,
		ActiveFilters: Filters{"email": {"Presley.Mueller@myrl.com", "Dallas@ole.me"}, "postId": {}}})
	if got := ids(res.Rows); !reflect.DeepEqual(got, []string{"7", "6"}) {
		t.Fatalf("email filter asc = %v", got)
	}

	res, _ = m.Fetch(ctx, Query{Page: 1, SearchQuery: "GARFIELD"})
	if got := ids(res.Rows); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("search = %v", got)
	}

	res, _ = m.Fetch(ctx, Query{Page: 9})
	if len(res.Rows) != 0 {
		t.Fatalf("page past end returned %d rows", len(res.Rows))
	}
}

func TestMemoryRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemory(nil, 0).Fetch(ctx, Query{Page: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestStubServesTenPerPageAndRecordsCalls(t *testing.T) {
	s := NewStub(fixture.Comments()...)
	ctx := context.Background()

	q1 := Query{Page: 1, APIURL: "/comments", ActiveFilters: Filters{}, SortDirection: Descending}
	q2 := Query{Page: 2, APIURL: "/comments", SearchQuery: "x", ActiveFilters: Filters{"email": {"a"}}, SortDirection: Ascending}

	res, err := s.Fetch(ctx, q1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rows) != 10 || ids(res.Rows)[0] != "1" {
		t.Fatalf("page 1 = %v", ids(res.Rows))
	}
	res, _ = s.Fetch(ctx, q2)
	if ids(res.Rows)[0] != "11" {
		t.Fatalf("page 2 starts at %s, want 11", ids(res.Rows)[0])
	}

	q2.ActiveFilters["email"][0] = "mutated"
	calls := s.Calls()
	if len(calls) != 2 || !calls[0].Equal(q1) {
		t.Fatalf("calls = %v", calls)
	}
	if calls[1].ActiveFilters["email"][0] != "a" {
		t.Fatal("stub kept a reference to the caller's filters")
	}
}

func TestStubHoldAndFail(t *testing.T) {
	s := NewStub(fixture.Comments()...)
	release := s.Hold()

	done := make(chan error, 1)
	go func() {
		_, err := s.Fetch(context.Background(), Query{Page: 1})
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("fetch returned while held")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	release()
	if err := <-done; err != nil {
		t.Fatalf("held fetch: %v", err)
	}

	boom := errors.New("boom")
	s.FailWith(boom)
	if _, err := s.Fetch(context.Background(), Query{Page: 1}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page, size, total, start, end int
	}{
		{1, 10, 25, 0, 10},
		{3, 10, 25, 20, 25},
		{4, 10, 25, 25, 25},
		{0, 10, 25, 0, 10},
	}
	for _, tt := range tests {
		s, e := PageBounds(tt.page, tt.size, tt.total)
		if s != tt.start || e != tt.end {
			t.Errorf("PageBounds(%d, %d, %d) = %d, %d; want %d, %d", tt.page, tt.size, tt.total, s, e, tt.start, tt.end)
		}
	}
	if PageCount(25, 10) != 3 || PageCount(0, 10) != 1 || PageCount(5, 0) != 0 || PageCount(20, 10) != 2 {
		t.Fatal("PageCount wrong")
	}
}
