package table

import (
	"strconv"
	"strings"

	"github.com/imgajeed76/lttable/internal/ui/styles"
)

// DefaultMaxPagesToRender is the number of numbered page controls shown
// when the caller does not say otherwise.
const DefaultMaxPagesToRender = 10

// PageControl is one numbered paginator control.
type PageControl struct {
	Page     int
	Label    string
	Active   bool
	Disabled bool
}

// Paginator renders page controls from the current page. It holds no state
// of its own. PageCount 0 means the number of pages is unknown.
type Paginator struct {
	Current          int
	MaxPagesToRender int
	PageCount        int
}

func (p Paginator) window() int {
	if p.MaxPagesToRender <= 0 {
		return DefaultMaxPagesToRender
	}
	return p.MaxPagesToRender
}

// Controls returns the numbered controls 1..MaxPagesToRender. The window
// does not move with the current page.
func (p Paginator) Controls() []PageControl {
	n := p.window()
	controls := make([]PageControl, n)
	for i := range controls {
		page := i + 1
		controls[i] = PageControl{
			Page:     page,
			Label:    strconv.Itoa(page),
			Active:   page == p.Current,
			Disabled: p.PageCount > 0 && page > p.PageCount,
		}
	}
	return controls
}

// Previous returns the page before the current one; ok is false on page 1.
func (p Paginator) Previous() (int, bool) {
	if p.Current <= 1 {
		return p.Current, false
	}
	return p.Current - 1, true
}

// Next returns the page after the current one. Without a page count there
// is no upper bound.
func (p Paginator) Next() (int, bool) {
	if p.PageCount > 0 && p.Current >= p.PageCount {
		return p.Current, false
	}
	return p.Current + 1, true
}

// Select returns page n if a control can navigate there.
func (p Paginator) Select(n int) (int, bool) {
	if n < 1 || (p.PageCount > 0 && n > p.PageCount) {
		return p.Current, false
	}
	return n, true
}

// View renders the paginator line.
func (p Paginator) View() string {
	var parts []string

	prev := "‹ prev"
	if _, ok := p.Previous(); ok {
		parts = append(parts, prev)
	} else {
		parts = append(parts, styles.Render(styles.DisabledStyle, prev))
	}

	for _, c := range p.Controls() {
		switch {
		case c.Active:
			parts = append(parts, styles.Render(styles.PageActiveStyle, "["+c.Label+"]"))
		case c.Disabled:
			parts = append(parts, styles.Render(styles.DisabledStyle, " "+c.Label+" "))
		default:
			parts = append(parts, " "+c.Label+" ")
		}
	}

	next := "next ›"
	if _, ok := p.Next(); ok {
		parts = append(parts, next)
	} else {
		parts = append(parts, styles.Render(styles.DisabledStyle, next))
	}

	return strings.Join(parts, " ")
}
