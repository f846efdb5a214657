package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/ui/styles"
	"github.com/imgajeed76/lttable/internal/util"
)

const (
	defaultColWidth = 20
	minColWidth     = 3
	defaultWidth    = 120
	colGap          = 2

	// title, controls, header, separator, paginator, status
	chromeLines = 6
)

// View renders the whole table.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Render(styles.TitleStyle, fmt.Sprintf("%s  Page: %d", m.opts.Title, m.state.Page)))
	sb.WriteString("\n")

	sb.WriteString(m.controlsLine())
	sb.WriteString("\n")

	viewportWidth := m.viewportWidth()
	sb.WriteString(applyViewport(m.headerLine(), m.scrollX, viewportWidth))
	sb.WriteString("\n")
	sb.WriteString(applyViewport(m.separatorLine(), m.scrollX, viewportWidth))
	sb.WriteString("\n")

	if m.state.OpenFilter != "" {
		sb.WriteString(m.popover.View())
		sb.WriteString("\n")
	}

	if len(m.rows) == 0 && !m.loading {
		sb.WriteString(styles.MutedMsg("No rows"))
		sb.WriteString("\n")
	}
	end := min(m.scrollY+m.visibleRowCount(), len(m.rows))
	for i := m.scrollY; i < end; i++ {
		sb.WriteString(applyViewport(m.rowLine(m.rows[i], i == m.cursor), m.scrollX, viewportWidth))
		sb.WriteString("\n")
	}

	if !m.opts.HidePaginator {
		sb.WriteString(m.paginator().View())
		sb.WriteString("\n")
	}

	sb.WriteString(m.statusLine())
	return sb.String()
}

func (m Model) controlsLine() string {
	var parts []string
	if !m.opts.HideSearch {
		switch {
		case m.search.Focused():
			parts = append(parts, m.search.View())
		case m.state.SearchQuery != "":
			parts = append(parts, fmt.Sprintf("/%s", m.state.SearchQuery))
		default:
			parts = append(parts, styles.MutedMsg("/ search"))
		}
	}
	if l := LoadingIndicator(m.loading); l != "" {
		parts = append(parts, styles.Render(styles.WarningStyle, l))
	}
	return strings.Join(parts, "  ")
}

func (m Model) statusLine() string {
	if m.fetchErr != nil {
		return styles.ErrorMsg(fmt.Sprintf("fetch failed: %s", util.SingleLine(m.fetchErr.Error()))) +
			styles.MutedMsg("  (esc to dismiss)")
	}
	if m.statusMsg != "" && time.Now().Before(m.statusUntil) {
		return styles.SuccessMsg(m.statusMsg)
	}

	switch {
	case m.search.Focused():
		return styles.MutedMsg("enter search  esc cancel")
	case m.state.OpenFilter != "":
		return styles.MutedMsg("↑↓ move  space toggle  enter save  esc close")
	}

	summary := fmt.Sprintf("%s rows", humanize.Comma(int64(len(m.rows))))
	if m.pageCount > 0 {
		summary += fmt.Sprintf(" · page %s of %s", humanize.Comma(int64(m.state.Page)), humanize.Comma(int64(m.pageCount)))
	}
	return styles.MutedMsg(summary + "  ←→ column  s sort  f filter  / search  [ ] page  y copy  q quit")
}

// headerLabel is the unstyled header text of col. The sorted column gets
// an arrow and columns with candidates get a filter marker.
func (m Model) headerLabel(col record.Column) string {
	label := col.Label()
	if m.state.SortBy != "" && m.state.SortBy == col.DataPath {
		label += " " + styles.SortArrow(string(m.state.SortDirection))
	}
	if col.HasFilters() {
		if m.state.FilterActive(col.DataPath) {
			label += " [f*]"
		} else {
			label += " [f]"
		}
	}
	return label
}

func (m Model) headerLine() string {
	var sb strings.Builder
	for i, col := range m.opts.Columns {
		cell := PadOrTruncate(m.headerLabel(col), colWidth(col))
		switch {
		case i == m.colCursor:
			sb.WriteString(styles.Render(styles.HeaderFocused, cell))
		case m.state.FilterActive(col.DataPath):
			sb.WriteString(styles.Render(styles.FilterOnStyle, cell))
		default:
			sb.WriteString(styles.Render(styles.HeaderStyle, cell))
		}
		sb.WriteString(strings.Repeat(" ", colGap))
	}
	return sb.String()
}

func (m Model) separatorLine() string {
	var sb strings.Builder
	for i, col := range m.opts.Columns {
		sep := strings.Repeat("─", colWidth(col))
		if i == m.colCursor {
			sb.WriteString(styles.Render(styles.HeaderStyle, sep))
		} else {
			sb.WriteString(styles.MutedMsg(sep))
		}
		sb.WriteString(strings.Repeat(" ", colGap))
	}
	return sb.String()
}

// rowLine lays a row out under the column headers. Fields without a column
// are not shown.
func (m Model) rowLine(row Row, selected bool) string {
	var sb strings.Builder
	for i, col := range m.opts.Columns {
		var val string
		if cell, ok := row.Cell(col.DataPath); ok {
			val = util.SingleLine(cell.Value.String())
		}
		text := PadOrTruncate(val, colWidth(col))
		switch {
		case selected && i == m.colCursor:
			sb.WriteString(styles.Render(styles.SelectedStyle.Bold(true), text))
		case selected:
			sb.WriteString(styles.Render(styles.SelectedStyle, text))
		default:
			sb.WriteString(text)
		}
		sb.WriteString(strings.Repeat(" ", colGap))
	}
	return sb.String()
}

func colWidth(col record.Column) int {
	if col.Width <= 0 {
		return defaultColWidth
	}
	return max(col.Width, minColWidth)
}

func (m Model) getColStartX(colIdx int) int {
	x := 0
	for i := 0; i < colIdx && i < len(m.opts.Columns); i++ {
		x += colWidth(m.opts.Columns[i]) + colGap
	}
	return x
}

func (m Model) getColEndX(colIdx int) int {
	return m.getColStartX(colIdx) + colWidth(m.opts.Columns[colIdx])
}

func (m Model) getTotalWidth() int {
	return m.getColStartX(len(m.opts.Columns))
}

func (m Model) viewportWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return max(m.width-2, 1)
}

func (m Model) getMaxScrollX() int {
	return max(m.getTotalWidth()-m.viewportWidth(), 0)
}

// visibleRowCount is the number of body rows that fit. Before the first
// window size arrives every row is shown.
func (m Model) visibleRowCount() int {
	if m.height <= 0 {
		return len(m.rows)
	}
	count := m.height - chromeLines
	if m.state.OpenFilter != "" {
		count -= strings.Count(m.popover.View(), "\n") + 1
	}
	return max(count, 1)
}

func (m *Model) ensureRowVisible() {
	visibleRows := m.visibleRowCount()
	if visibleRows <= 0 {
		m.scrollY = 0
		return
	}
	if m.cursor < m.scrollY {
		m.scrollY = m.cursor
	} else if m.cursor >= m.scrollY+visibleRows {
		m.scrollY = m.cursor - visibleRows + 1
	}
}

func (m *Model) ensureColVisible() {
	if len(m.opts.Columns) == 0 {
		return
	}
	colStartX := m.getColStartX(m.colCursor)
	colEndX := m.getColEndX(m.colCursor)
	viewportWidth := m.viewportWidth()

	if colStartX < m.scrollX {
		m.scrollX = colStartX
	} else if colEndX > m.scrollX+viewportWidth {
		if colEndX-colStartX <= viewportWidth {
			m.scrollX = colEndX - viewportWidth
		} else {
			m.scrollX = colStartX
		}
	}

	m.scrollX = min(max(m.scrollX, 0), m.getMaxScrollX())
}

// applyViewport extracts a horizontal slice of a string, handling ANSI escape
// codes properly. It returns the portion of the string from visual column
// startX with the given width.
func applyViewport(s string, startX, width int) string {
	if width <= 0 {
		return ""
	}
	if startX < 0 {
		startX = 0
	}

	var result strings.Builder
	result.Grow(width + 64)

	visualPos := 0
	outputChars := 0
	stylesApplied := false
	inEscape := false
	escapeSeq := strings.Builder{}

	var activeStyles []string

	runes := []rune(s)
	for i := 0; i < len(runes) && outputChars < width; i++ {
		r := runes[i]

		if r == '\x1b' && i+1 < len(runes) && runes[i+1] == '[' {
			inEscape = true
			escapeSeq.Reset()
			escapeSeq.WriteRune(r)
			continue
		}

		if inEscape {
			escapeSeq.WriteRune(r)
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
				seq := escapeSeq.String()

				if r == 'm' {
					if seq == "\x1b[0m" || seq == "\x1b[m" {
						activeStyles = nil
					} else {
						activeStyles = append(activeStyles, seq)
					}
				}

				if visualPos >= startX {
					result.WriteString(seq)
				}
			}
			continue
		}

		if visualPos >= startX {
			if !stylesApplied && len(activeStyles) > 0 {
				for _, style := range activeStyles {
					result.WriteString(style)
				}
				stylesApplied = true
			}
			result.WriteRune(r)
			outputChars++
		}
		visualPos++
	}

	if len(activeStyles) > 0 && outputChars > 0 {
		result.WriteString("\x1b[0m")
	}

	return strings.TrimRight(result.String(), " ")
}
