package table

import (
	"reflect"
	"testing"

	"github.com/imgajeed76/lttable/internal/fetch"
)

func TestNewStateQuery(t *testing.T) {
	got := NewState().Query("/comments").String()
	if want := `(1, "/comments", "", {}, "", "desc")`; got != want {
		t.Fatalf("initial query = %s, want %s", got, want)
	}
}

func TestSortToggleLaw(t *testing.T) {
	s := NewState()

	// Same column repeatedly: desc, asc, desc, asc
	want := []fetch.Direction{fetch.Descending, fetch.Ascending, fetch.Descending, fetch.Ascending}
	for i, dir := range want {
		s = s.SortByColumn("email")
		if s.SortDirection != dir || s.SortBy != "email" || s.LastSortedPath != "email" {
			t.Fatalf("click %d: state = %+v, want %s on email", i+1, s, dir)
		}
	}

	// A different column always starts descending, whatever came before
	for _, prior := range []fetch.Direction{fetch.Ascending, fetch.Descending} {
		s.SortDirection = prior
		s.LastSortedPath = "email"
		next := s.SortByColumn("name")
		if next.SortDirection != fetch.Descending || next.SortBy != "name" || next.LastSortedPath != "name" {
			t.Fatalf("switch from %s: state = %+v", prior, next)
		}
	}
}

func TestCommitColumnFiltersProjectsSelection(t *testing.T) {
	s := NewState()
	s.ActiveFilters = fetch.Filters{"postId": {"1", "2"}}
	before := s

	s = s.CommitColumnFilters("email", []Choice{
		{Value: "a", Selected: true},
		{Value: "b", Selected: false},
		{Value: "c", Selected: true},
	})

	if got := s.ActiveFilters["email"]; !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("email filters = %v, want [a c]", got)
	}
	if got := s.ActiveFilters["postId"]; !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("postId filters changed to %v", got)
	}
	if _, ok := before.ActiveFilters["email"]; ok {
		t.Fatal("commit mutated the previous state's filters")
	}

	// A second commit replaces the list, it does not merge
	s = s.CommitColumnFilters("email", []Choice{{Value: "b", Selected: true}, {Value: "b", Selected: true}})
	if got := s.ActiveFilters["email"]; !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("email filters = %v, want [b]", got)
	}
}

func TestToggleFilterPopoverKeepsOneOpen(t *testing.T) {
	s := NewState().ToggleFilterPopover("email")
	if s.OpenFilter != "email" {
		t.Fatalf("open = %q", s.OpenFilter)
	}
	s = s.ToggleFilterPopover("postId")
	if s.OpenFilter != "postId" {
		t.Fatalf("open = %q, want postId", s.OpenFilter)
	}
	s = s.ToggleFilterPopover("postId")
	if s.OpenFilter != "" {
		t.Fatalf("open = %q, want closed", s.OpenFilter)
	}
	if !s.Query("/c").Equal(NewState().Query("/c")) {
		t.Fatal("popover state leaked into the query")
	}
}

func TestChangePageAndSearch(t *testing.T) {
	s := NewState().ChangePage(7)
	if s.Page != 7 {
		t.Fatalf("page = %d", s.Page)
	}
	if s.ChangePage(0).Page != 7 || s.ChangePage(-2).Page != 7 {
		t.Fatal("non-positive page accepted")
	}
	s = s.ChangeSearch("fugit")
	if s.Page != 7 || s.SearchQuery != "fugit" {
		t.Fatalf("search changed page: %+v", s)
	}
}
