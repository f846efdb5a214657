package fetch

import (
	"context"
	"sync"

	"github.com/imgajeed76/lttable/internal/record"
)

// StubPageSize is the page size of Stub, ten rows like the mock API the
// widget was first built against.
const StubPageSize = 10

// Stub is a scripted Fetcher. It ignores everything but the page number,
// serving records[(page-1)*10 : page*10], and records every query it
// receives. Each table under test gets its own Stub.
type Stub struct {
	mu        sync.Mutex
	records   []record.Record
	calls     []Query
	gate      chan struct{}
	err       error
	pageCount int
}

// NewStub returns a Stub serving records.
func NewStub(records ...record.Record) *Stub {
	return &Stub{records: records}
}

// Fetch implements Fetcher.
func (s *Stub) Fetch(ctx context.Context, q Query) (Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q.Clone())
	gate, err, pageCount := s.gate, s.err, s.pageCount
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if err != nil {
		return Result{}, err
	}

	start, end := PageBounds(q.Page, StubPageSize, len(s.records))
	rows := make([]record.Record, end-start)
	copy(rows, s.records[start:end])
	return Result{Rows: rows, PageCount: pageCount}, nil
}

// Calls returns the queries received so far, in call order.
func (s *Stub) Calls() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Query, len(s.calls))
	copy(out, s.calls)
	return out
}

// FailWith makes subsequent fetches return err. A nil err restores normal
// behavior.
func (s *Stub) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// ReportPageCount sets the PageCount returned with every result.
func (s *Stub) ReportPageCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCount = n
}

// Hold blocks subsequent fetches until the returned release func is called.
func (s *Stub) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}
