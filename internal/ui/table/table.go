// Package table is the interactive data table: a bubbletea model that owns
// paging, sorting, filtering and search state, re-derives the fetch query
// from it and refetches whenever the query changes. It also provides the
// plain, JSON and raw formatters used when no terminal is attached.
package table

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/imgajeed76/lttable/internal/record"
	"golang.org/x/term"
)

// DisplayOptions controls how non-interactive results are rendered.
type DisplayOptions struct {
	// JSON outputs results as a JSON array of objects.
	JSON bool
	// Raw outputs results as tab-separated values (for piping).
	Raw bool
}

// DisplayResults prints rows in the format picked by opts.
func DisplayResults(w io.Writer, columns []record.Column, rows []record.Record, opts DisplayOptions) error {
	switch {
	case opts.Raw:
		PrintRaw(w, columns, rows)
		return nil
	case opts.JSON:
		return PrintJSON(w, rows)
	}
	PrintPlainTable(w, columns, rows)
	return nil
}

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run shows the table until the user quits. If the user requests an export
// (J/R/P), the current page is printed to stdout after the TUI exits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(Model)
	if !ok {
		return nil
	}
	if fm.fatal != nil {
		return fm.fatal
	}

	switch fm.exitMode {
	case exitJSON:
		return PrintJSON(os.Stdout, fm.records)
	case exitRaw:
		PrintRaw(os.Stdout, fm.opts.Columns, fm.records)
	case exitPlain:
		PrintPlainTable(os.Stdout, fm.opts.Columns, fm.records)
	}
	return nil
}
