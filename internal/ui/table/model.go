package table

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/imgajeed76/lttable/internal/fetch"
	"github.com/imgajeed76/lttable/internal/logger"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/util"
	"github.com/sirupsen/logrus"
)

// Options configures a table.
type Options struct {
	Title         string
	APIURL        string // passed to the fetcher verbatim
	RowIdentifier string
	Columns       []record.Column
	Fetcher       fetch.Fetcher

	// MaxPagesToRender is the number of numbered page controls (default 10).
	MaxPagesToRender int
	// PageCount bounds the paginator; 0 means unknown. A page count
	// reported by the fetcher takes precedence.
	PageCount int

	HideSearch    bool
	HidePaginator bool
	InitialSearch string
}

// What to do after quitting the TUI
type exitMode int

const (
	exitNormal exitMode = iota
	exitJSON
	exitRaw
	exitPlain
)

// fetchResultMsg is the outcome of one fetch, tagged with the table and
// generation that issued it.
type fetchResultMsg struct {
	owner      string
	generation uint64
	query      fetch.Query
	result     fetch.Result
	err        error
	elapsed    time.Duration
}

type statusClearMsg struct{}

const statusDuration = 2 * time.Second

// Model is the table container. It owns the interaction state, issues a
// fetch whenever the derived query changes and lays out the sub-widgets.
type Model struct {
	id   string
	opts Options

	state      State
	issued     fetch.Query // last query handed to the fetcher
	generation uint64

	records   []record.Record
	rows      []Row
	loading   bool
	fetchErr  error
	fatal     error
	pageCount int

	search  SearchBox
	popover ColumnFilter

	cursor    int // selected row
	colCursor int // selected column
	scrollX   int
	scrollY   int
	width     int
	height    int

	statusMsg   string
	statusUntil time.Time
	exitMode    exitMode
}

// New validates opts and prepares the first fetch, which Init issues.
func New(opts Options) (Model, error) {
	if opts.Fetcher == nil {
		return Model{}, errors.New("table: no fetcher configured")
	}
	if opts.RowIdentifier == "" {
		return Model{}, util.ErrNoRowIdentifier
	}
	if len(opts.Columns) == 0 {
		return Model{}, util.ErrNoColumns
	}
	if err := record.ValidateColumns(opts.Columns); err != nil {
		return Model{}, err
	}
	if opts.MaxPagesToRender <= 0 {
		opts.MaxPagesToRender = DefaultMaxPagesToRender
	}
	opts.Columns = append([]record.Column(nil), opts.Columns...)

	id := util.NewULID()
	m := Model{
		id:        id,
		opts:      opts,
		state:     NewState().ChangeSearch(opts.InitialSearch),
		search:    NewSearchBox(id, opts.InitialSearch),
		pageCount: opts.PageCount,
	}
	m.issue()
	return m, nil
}

// ID returns the instance id carried by every message this table emits.
func (m Model) ID() string { return m.id }

// State returns the interaction state.
func (m Model) State() State { return m.state }

// Records returns the rows of the last applied fetch.
func (m Model) Records() []record.Record { return m.records }

// Loading reports whether the last issued fetch is outstanding.
func (m Model) Loading() bool { return m.loading }

// Generation returns the generation of the last issued fetch.
func (m Model) Generation() uint64 { return m.generation }

// FetchErr returns the error of the last fetch, until it is dismissed or
// the next query is issued.
func (m Model) FetchErr() error { return m.fetchErr }

// Err returns the error that ended the program, such as a row without its
// identifier field.
func (m Model) Err() error { return m.fatal }

// Columns returns the column definitions.
func (m Model) Columns() []record.Column { return m.opts.Columns }

// PageCount returns the known number of pages, 0 if unknown.
func (m Model) PageCount() int { return m.pageCount }

// issue starts a new generation for the current query.
func (m *Model) issue() {
	m.generation++
	m.issued = m.state.Query(m.opts.APIURL)
	m.loading = true
	m.fetchErr = nil
}

// fetchCmd runs the fetch for the last issued generation.
func (m Model) fetchCmd() tea.Cmd {
	owner, gen, q, fetcher := m.id, m.generation, m.issued.Clone(), m.opts.Fetcher
	return func() tea.Msg {
		requestID := util.NewULID()
		ctx := fetch.WithRequestID(context.Background(), requestID)

		logger.Log.WithFields(logrus.Fields{
			"table":      util.ShortID(owner),
			"generation": gen,
			"request_id": requestID,
		}).Debugf("fetch %s", q)

		start := time.Now()
		res, err := fetcher.Fetch(ctx, q)
		return fetchResultMsg{
			owner:      owner,
			generation: gen,
			query:      q,
			result:     res,
			err:        err,
			elapsed:    time.Since(start),
		}
	}
}

// Init issues the first fetch.
func (m Model) Init() tea.Cmd {
	return m.fetchCmd()
}

// Update applies msg and, if the derived query changed, issues a fetch.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m, cmd = m.handle(msg)

	if m.fatal != nil {
		return m, tea.Quit
	}

	if !m.state.Query(m.opts.APIURL).Equal(m.issued) {
		m.issue()
		return m, tea.Batch(cmd, m.fetchCmd())
	}
	return m, cmd
}

func (m Model) handle(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureRowVisible()
		m.ensureColVisible()

	case fetchResultMsg:
		if msg.owner != m.id {
			return m, nil
		}
		m.applyResult(msg)

	case SearchSubmittedMsg:
		if msg.Owner != m.id {
			return m, nil
		}
		m.state = m.state.ChangeSearch(msg.Query)

	case FilterSavedMsg:
		if msg.Owner != m.id {
			return m, nil
		}
		m.state = m.state.CommitColumnFilters(msg.DataPath, msg.Selection)

	case statusClearMsg:
		// Clear the flash message if it has expired
		if !m.statusUntil.IsZero() && time.Now().After(m.statusUntil) {
			m.statusMsg = ""
			m.statusUntil = time.Time{}
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) applyResult(msg fetchResultMsg) {
	log := logger.Log.WithFields(logrus.Fields{
		"table":      util.ShortID(m.id),
		"generation": msg.generation,
		"elapsed":    msg.elapsed.Round(time.Millisecond),
	})

	if msg.generation != m.generation {
		log.Debugf("dropping stale result, current generation is %d", m.generation)
		return
	}

	m.loading = false
	if msg.err != nil {
		log.WithError(msg.err).Errorf("fetch %s failed", msg.query)
		m.fetchErr = msg.err
		return
	}

	rows, err := renderRows(msg.result.Rows, m.opts.RowIdentifier)
	if err != nil {
		log.WithError(err).Error("cannot render rows")
		m.fatal = err
		return
	}

	log.Debugf("applied %d rows", len(rows))
	m.records = msg.result.Rows
	m.rows = rows
	if msg.result.PageCount > 0 {
		m.pageCount = msg.result.PageCount
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.ensureRowVisible()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.exitMode = exitNormal
		return m, tea.Quit
	}

	if m.search.Focused() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	if m.state.OpenFilter != "" {
		if key.Matches(msg, filterKeys.Close) {
			m.toggleFilter(m.state.OpenFilter)
			return m, nil
		}
		var cmd tea.Cmd
		m.popover, cmd = m.popover.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, tableKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, tableKeys.Search):
		if !m.opts.HideSearch {
			m.search = m.search.Focus()
		}

	case key.Matches(msg, tableKeys.Dismiss):
		m.fetchErr = nil

	case key.Matches(msg, tableKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Left):
		if m.colCursor > 0 {
			m.colCursor--
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Right):
		if m.colCursor < len(m.opts.Columns)-1 {
			m.colCursor++
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Home):
		m.cursor = 0
		m.scrollY = 0

	case key.Matches(msg, tableKeys.End):
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Sort):
		col := m.opts.Columns[m.colCursor]
		if !col.Sortable {
			return m, m.setStatus(fmt.Sprintf("%s is not sortable", col.Label()))
		}
		m.state = m.state.SortByColumn(col.DataPath)

	case key.Matches(msg, tableKeys.Filter):
		col := m.opts.Columns[m.colCursor]
		if !col.HasFilters() {
			return m, m.setStatus(fmt.Sprintf("%s has no filters", col.Label()))
		}
		m.toggleFilter(col.DataPath)

	case key.Matches(msg, tableKeys.PrevPage):
		if page, ok := m.paginator().Previous(); ok && !m.opts.HidePaginator {
			m.state = m.state.ChangePage(page)
		}

	case key.Matches(msg, tableKeys.NextPage):
		if page, ok := m.paginator().Next(); ok && !m.opts.HidePaginator {
			m.state = m.state.ChangePage(page)
		}

	case key.Matches(msg, tableKeys.Page):
		if m.opts.HidePaginator || len(msg.Runes) != 1 {
			break
		}
		n := int(msg.Runes[0] - '0')
		if n == 0 {
			n = 10
		}
		if n > m.opts.MaxPagesToRender {
			break
		}
		if page, ok := m.paginator().Select(n); ok {
			m.state = m.state.ChangePage(page)
		}

	case key.Matches(msg, tableKeys.YankCell):
		return m, m.yankCell()

	case key.Matches(msg, tableKeys.YankRow):
		return m, m.yankRow()

	case key.Matches(msg, tableKeys.ExportJSON):
		m.exitMode = exitJSON
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportRaw):
		m.exitMode = exitRaw
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportPlain):
		m.exitMode = exitPlain
		return m, tea.Quit
	}

	return m, nil
}

// toggleFilter opens or closes the popover of dataPath. An opened popover
// always starts with nothing checked.
func (m *Model) toggleFilter(dataPath string) {
	m.state = m.state.ToggleFilterPopover(dataPath)
	if m.state.OpenFilter == "" {
		m.popover = ColumnFilter{}
		return
	}
	for _, col := range m.opts.Columns {
		if col.DataPath == m.state.OpenFilter {
			m.popover = NewColumnFilter(m.id, col.DataPath, col.Filters)
			return
		}
	}
}

func (m Model) paginator() Paginator {
	return Paginator{
		Current:          m.state.Page,
		MaxPagesToRender: m.opts.MaxPagesToRender,
		PageCount:        m.pageCount,
	}
}

// setStatus sets a temporary status message that auto-clears.
func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusUntil = time.Now().Add(statusDuration)
	return tea.Tick(statusDuration, func(t time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

func (m Model) selectedRow() (Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

// yankCell copies the selected cell value to the system clipboard.
func (m *Model) yankCell() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	cell, _ := row.Cell(m.opts.Columns[m.colCursor].DataPath)
	val := cell.Value.String()
	if err := clipboard.WriteAll(val); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied: %s", Truncate(util.SingleLine(val), 40)))
}

// yankRow copies the selected row (tab-separated, record order) to the clipboard.
func (m *Model) yankRow() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	vals := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		vals[i] = util.SingleLine(c.Value.String())
	}
	if err := clipboard.WriteAll(strings.Join(vals, "\t")); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied row %s (%d fields)", row.Key, len(row.Cells)))
}
