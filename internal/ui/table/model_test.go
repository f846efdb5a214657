package table

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/fixture"
	"github.com/imgajeed76/lttable/internal/record"
)

func newTestModel(t *testing.T, f fetch.Fetcher) Model {
	t.Helper()
	m, err := New(Options{
		Title:         "Comments",
		APIURL:        fixture.Resource,
		RowIdentifier: "id",
		Columns:       fixture.CommentColumns(),
		Fetcher:       f,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// update feeds msg to m and returns the new model and command.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// settle runs cmd and feeds every table message it produces back into m
// until nothing is left, the way the bubbletea runtime would.
func settle(m Model, cmd tea.Cmd) Model {
	queue := runCmd(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case fetchResultMsg, SearchSubmittedMsg, FilterSavedMsg:
			var next tea.Cmd
			m, next = update(m, msg)
			queue = append(queue, runCmd(next)...)
		}
	}
	return m
}

// press sends each key and settles what it triggers.
func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = update(m, keyMsg(k))
		m = settle(m, cmd)
	}
	return m
}

func callStrings(s *fetch.Stub) []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, q := range calls {
		out[i] = q.String()
	}
	return out
}

func TestEndToEndQuerySequence(t *testing.T) {
	stub := fetch.NewStub(fixture.Comments()...)
	m := newTestModel(t, stub)
	m = settle(m, m.Init())

	first := fixture.CommentColumns()[3].Filters[0]
	steps := []struct {
		name string
		keys []string
		want string
	}{
		{"mount", nil, `(1, "/comments", "", {}, "", "desc")`},
		{"search", []string{"/", "example search", "enter"}, `(1, "/comments", "example search", {}, "", "desc")`},
		{"sort email", []string{"right", "right", "right", "s"}, `(1, "/comments", "example search", {}, "email", "desc")`},
		{"sort email again", []string{"s"}, `(1, "/comments", "example search", {}, "email", "asc")`},
		{"filter email", []string{"f", " ", "enter"}, `(1, "/comments", "example search", {email: ["` + first + `"]}, "email", "asc")`},
		{"page 2", []string{"esc", "2"}, `(2, "/comments", "example search", {email: ["` + first + `"]}, "email", "asc")`},
	}

	for i, step := range steps {
		m = press(m, step.keys...)
		calls := callStrings(stub)
		if len(calls) != i+1 {
			t.Fatalf("%s: %d fetches, want %d: %v", step.name, len(calls), i+1, calls)
		}
		if calls[i] != step.want {
			t.Fatalf("%s: fetch = %s\nwant %s", step.name, calls[i], step.want)
		}
		if m.Loading() {
			t.Fatalf("%s: still loading after the fetch resolved", step.name)
		}
	}

	if len(m.Records()) != 10 {
		t.Fatalf("page 2 rows = %d, want 10", len(m.Records()))
	}
	if v, _ := m.Records()[0].Get("id"); v.String() != "11" {
		t.Fatalf("page 2 starts at id %s, want 11", v)
	}
}

func TestInitFetchesOnceAndLoads(t *testing.T) {
	stub := fetch.NewStub(fixture.Comments()...)
	m := newTestModel(t, stub)
	if !m.Loading() || m.Generation() != 1 {
		t.Fatalf("new model: loading=%v generation=%d", m.Loading(), m.Generation())
	}
	if !strings.Contains(m.View(), LoadingText) {
		t.Fatal("view does not show the loading indicator")
	}

	m = settle(m, m.Init())
	if m.Loading() || len(m.Records()) != 10 {
		t.Fatalf("after init: loading=%v rows=%d", m.Loading(), len(m.Records()))
	}
	if strings.Contains(m.View(), LoadingText) {
		t.Fatal("view still shows the loading indicator")
	}
	if len(stub.Calls()) != 1 {
		t.Fatalf("fetches = %d, want 1", len(stub.Calls()))
	}
}

func TestUnchangedQueryDoesNotRefetch(t *testing.T) {
	stub := fetch.NewStub(fixture.Comments()...)
	m := newTestModel(t, stub)
	m = settle(m, m.Init())

	// Opening and closing a popover, moving around, submitting the same search
	m = press(m, "f", "esc", "down", "right", "left", "f", "f")
	m = settle(m, func() tea.Msg { return SearchSubmittedMsg{Owner: m.ID(), Query: ""} })
	// Previous on page 1 is a no-op
	m = press(m, "[")

	if n := len(stub.Calls()); n != 1 {
		t.Fatalf("fetches = %d, want 1: %v", n, callStrings(stub))
	}

	// Same filter selection committed twice fetches once
	m = press(m, "f", " ", "enter", "enter")
	if n := len(stub.Calls()); n != 2 {
		t.Fatalf("fetches = %d, want 2: %v", n, callStrings(stub))
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	byQuery := fetch.FetcherFunc(func(ctx context.Context, q fetch.Query) (fetch.Result, error) {
		id := "old"
		if q.SearchQuery != "" {
			id = "new"
		}
		return fetch.Result{Rows: []record.Record{record.New(record.Field{Key: "id", Value: record.String(id)})}}, nil
	})
	m := newTestModel(t, byQuery)

	oldMsgs := runCmd(m.Init())
	m, cmd := update(m, SearchSubmittedMsg{Owner: m.ID(), Query: "fugit"})
	newMsgs := runCmd(cmd)
	if m.Generation() != 2 || len(oldMsgs) != 1 || len(newMsgs) != 1 {
		t.Fatalf("generation=%d old=%d new=%d", m.Generation(), len(oldMsgs), len(newMsgs))
	}

	// The first query resolves while the second is outstanding
	m, _ = update(m, oldMsgs[0])
	if !m.Loading() || len(m.Records()) != 0 {
		t.Fatalf("stale result applied: loading=%v rows=%d", m.Loading(), len(m.Records()))
	}

	m, _ = update(m, newMsgs[0])
	if m.Loading() {
		t.Fatal("still loading after the current result")
	}

	// A late duplicate of the stale result changes nothing
	m, _ = update(m, oldMsgs[0])
	if v, _ := m.Records()[0].Get("id"); v.String() != "new" {
		t.Fatalf("rows from %s result, want new", v)
	}
}

func TestFetchErrorIsShownAndCleared(t *testing.T) {
	stub := fetch.NewStub(fixture.Comments()...)
	m := newTestModel(t, stub)
	m = settle(m, m.Init())

	stub.FailWith(errors.New("connection refused"))
	m = press(m, "]")
	if m.Loading() {
		t.Fatal("loading stuck after a failed fetch")
	}
	if m.FetchErr() == nil || !strings.Contains(m.View(), "fetch failed: connection refused") {
		t.Fatalf("error not shown: %v\n%s", m.FetchErr(), m.View())
	}
	if len(m.Records()) != 10 {
		t.Fatal("previous rows dropped on error")
	}

	m = press(m, "esc")
	if m.FetchErr() != nil {
		t.Fatal("esc did not dismiss the error")
	}

	m = press(m, "]")
	if m.FetchErr() == nil {
		t.Fatal("second failure not reported")
	}
	stub.FailWith(nil)
	m = press(m, "[")
	if m.FetchErr() != nil {
		t.Fatalf("error kept after a successful fetch: %v", m.FetchErr())
	}
}

func TestMissingRowIdentifierEndsProgram(t *testing.T) {
	noID := fetch.FetcherFunc(func(ctx context.Context, q fetch.Query) (fetch.Result, error) {
		return fetch.Result{Rows: []record.Record{record.New(record.Field{Key: "name", Value: record.String("orphan")})}}, nil
	})
	m := newTestModel(t, noID)

	msgs := runCmd(m.Init())
	m, cmd := update(m, msgs[0])

	var idErr *RowIdentifierError
	if !errors.As(m.Err(), &idErr) {
		t.Fatalf("Err() = %v, want *RowIdentifierError", m.Err())
	}
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("model did not quit")
	}
	if len(m.Records()) != 0 {
		t.Fatal("rows applied despite the failure")
	}
}

func TestInstancesIgnoreEachOther(t *testing.T) {
	stubA := fetch.NewStub(fixture.Comments()...)
	stubB := fetch.NewStub(fixture.Comments()...)
	a := newTestModel(t, stubA)
	b := newTestModel(t, stubB)
	if a.ID() == b.ID() {
		t.Fatal("instances share an id")
	}

	msgsA := runCmd(a.Init())
	b, cmd := update(b, msgsA[0])
	if cmd != nil || !b.Loading() || len(b.Records()) != 0 {
		t.Fatal("b applied a's fetch result")
	}

	b, cmd = update(b, SearchSubmittedMsg{Owner: a.ID(), Query: "x"})
	if cmd != nil || b.State().SearchQuery != "" {
		t.Fatal("b applied a's search")
	}
	b, _ = update(b, FilterSavedMsg{Owner: a.ID(), DataPath: "email", Selection: []Choice{{"Dallas@ole.me", true}}})
	if len(b.State().ActiveFilters) != 0 {
		t.Fatal("b applied a's filter")
	}
	if len(stubB.Calls()) != 0 {
		t.Fatalf("b fetched: %v", callStrings(stubB))
	}
}

func TestPageCountBoundsPaging(t *testing.T) {
	stub := fetch.NewStub(fixture.Comments()...)
	stub.ReportPageCount(3)
	m := newTestModel(t, stub)
	m = settle(m, m.Init())
	if m.PageCount() != 3 {
		t.Fatalf("page count = %d, want 3 from the result", m.PageCount())
	}

	m = press(m, "5")
	m = press(m, "3", "]")
	calls := callStrings(stub)
	if len(calls) != 2 || !strings.HasPrefix(calls[1], "(3,") {
		t.Fatalf("calls = %v", calls)
	}
	if got := m.View(); !strings.Contains(got, "Comments  Page: 3") || !strings.Contains(got, "page 3 of 3") {
		t.Fatalf("view:\n%s", got)
	}
}

func TestEmptyResultResetsPageCount(t *testing.T) {
	m := newTestModel(t, fetch.NewMemory(fixture.Comments(), 10))
	m = settle(m, m.Init())
	if m.PageCount() != 3 {
		t.Fatalf("page count = %d, want 3", m.PageCount())
	}

	m = press(m, "/", "zzzz-no-match", "enter")
	if len(m.Records()) != 0 {
		t.Fatalf("rows = %d, want none", len(m.Records()))
	}
	if m.PageCount() != 1 {
		t.Fatalf("page count = %d, want 1 after an empty result", m.PageCount())
	}
	if got := m.View(); !strings.Contains(got, "page 1 of 1") {
		t.Fatalf("view:\n%s", got)
	}
}

func TestViewShowsHeaderMarkers(t *testing.T) {
	m := newTestModel(t, fetch.NewStub(fixture.Comments()...))
	m = settle(m, m.Init())
	m = press(m, "right", "right", "right", "s")

	view := m.View()
	for _, want := range []string{"Comments  Page: 1", "Email ▼ [f]", "Post ...", "[1]", "Nikita@garfield.biz"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m = press(m, "f", " ", "enter", "esc")
	if view := m.View(); !strings.Contains(view, "[f*]") {
		t.Errorf("active filter marker missing:\n%s", view)
	}
}

func TestHiddenSearchAndPaginator(t *testing.T) {
	stub := fetch.NewStub(fixture.Comments()...)
	m, err := New(Options{
		Title:         "Comments",
		APIURL:        fixture.Resource,
		RowIdentifier: "id",
		Columns:       fixture.CommentColumns(),
		Fetcher:       stub,
		HideSearch:    true,
		HidePaginator: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	m = settle(m, m.Init())
	m = press(m, "/", "2", "]")
	if len(stub.Calls()) != 1 {
		t.Fatalf("hidden controls fetched: %v", callStrings(stub))
	}
	if strings.Contains(m.View(), "next ›") {
		t.Fatal("paginator rendered while hidden")
	}
}

func TestNewValidatesOptions(t *testing.T) {
	base := Options{APIURL: "/c", RowIdentifier: "id", Columns: fixture.CommentColumns(), Fetcher: fetch.NewStub()}

	tests := map[string]func(*Options){
		"no fetcher":    func(o *Options) { o.Fetcher = nil },
		"no identifier": func(o *Options) { o.RowIdentifier = "" },
		"no columns":    func(o *Options) { o.Columns = nil },
		"dup columns": func(o *Options) {
			o.Columns = []record.Column{{ID: 1, DataPath: "id"}, {ID: 2, DataPath: "id"}}
		},
	}
	for name, mutate := range tests {
		opts := base
		mutate(&opts)
		if _, err := New(opts); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
