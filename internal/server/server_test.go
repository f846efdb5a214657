package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/fixture"
	"github.com/imgajeed76/lttable/internal/record"
)

func newTestServer() *Server {
	return New(map[string]fetch.Fetcher{
		"comments": fetch.NewMemory(fixture.Comments(), 10),
	})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return resp
}

func ids(rows []record.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		v, _ := r.Get("id")
		out[i] = v.String()
	}
	return out
}

func TestListRows(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name      string
		target    string
		wantIDs   []string
		wantPages int
	}{
		{"last page", "/comments?page=3", []string{"21", "22", "23", "24", "25"}, 3},
		{"filter", "/comments?filter.postId=1&sort=id&dir=asc", []string{"1", "2", "3", "4", "5"}, 1},
		{"two filter values", "/comments?filter.email=Dallas@ole.me&filter.email=Presley.Mueller@myrl.com&sort=id&dir=desc", []string{"7", "6"}, 1},
		{"past the end", "/comments?page=9", []string{}, 3},
	}

	for _, tt := range tests {
		rec := get(t, s, tt.target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d: %s", tt.name, rec.Code, rec.Body.String())
		}
		resp := decode(t, rec)
		if got := ids(resp.Rows); !reflect.DeepEqual(got, tt.wantIDs) {
			t.Errorf("%s: ids = %v, want %v", tt.name, got, tt.wantIDs)
		}
		if resp.PageCount != tt.wantPages {
			t.Errorf("%s: page_count = %d, want %d", tt.name, resp.PageCount, tt.wantPages)
		}
	}
}

func TestListRowsErrors(t *testing.T) {
	s := newTestServer()

	if rec := get(t, s, "/posts"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown resource: status = %d", rec.Code)
	}
	if rec := get(t, s, "/comments?page=0"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad page: status = %d", rec.Code)
	}
	if rec := get(t, s, "/comments?dir=sideways"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad direction: status = %d", rec.Code)
	}
}

func TestIndexListsResources(t *testing.T) {
	rec := get(t, newTestServer(), "/")
	var body struct {
		Resources []string `json:"resources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(body.Resources, []string{"comments"}) {
		t.Fatalf("resources = %v", body.Resources)
	}
}

func TestHTTPFetcherAgainstServer(t *testing.T) {
	ts := httptest.NewServer(newTestServer().Handler())
	defer ts.Close()

	h, err := fetch.NewHTTP(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	res, err := h.Fetch(fetch.WithRequestID(context.Background(), "01HZZSERVE"), fetch.Query{
		Page:          1,
		APIURL:        fixture.Resource,
		SearchQuery:   "fugit",
		ActiveFilters: fetch.Filters{"postId": {"2", "3"}},
		SortBy:        "id",
		SortDirection: fetch.Ascending,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := ids(fetch.Apply(fixture.Comments(), fetch.Query{
		SearchQuery:   "fugit",
		ActiveFilters: fetch.Filters{"postId": {"2", "3"}},
		SortBy:        "id",
		SortDirection: fetch.Ascending,
	}))
	if len(want) == 0 {
		t.Fatal("fixture has no rows matching the query")
	}
	if len(want) > 10 {
		want = want[:10]
	}
	if got := ids(res.Rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if res.PageCount != 1 {
		t.Fatalf("page count = %d, want 1", res.PageCount)
	}
}
