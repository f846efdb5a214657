package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/lttable/internal/record"
	"github.com/imgajeed76/lttable/internal/ui/styles"
	"github.com/imgajeed76/lttable/internal/util"
)

// PrintJSON writes rows as a JSON array of objects, keeping each record's
// key order.
func PrintJSON(w io.Writer, rows []record.Record) error {
	if rows == nil {
		rows = []record.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// PrintRaw writes one tab-separated line per row, in column order (for piping).
func PrintRaw(w io.Writer, columns []record.Column, rows []record.Record) {
	for _, row := range rows {
		vals := make([]string, len(columns))
		for i, col := range columns {
			vals[i] = cellText(row, col.DataPath)
		}
		fmt.Fprintln(w, strings.Join(vals, "\t"))
	}
}

// PrintPlainTable prints a properly aligned table for non-TTY output.
// Shows full content without truncation.
func PrintPlainTable(w io.Writer, columns []record.Column, rows []record.Record) {
	if len(columns) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	// Calculate column widths based on actual content (no truncation)
	colWidths := make([]int, len(columns))
	for i, col := range columns {
		colWidths[i] = lipgloss.Width(col.Label())
	}
	for _, row := range rows {
		for i, col := range columns {
			colWidths[i] = max(colWidths[i], lipgloss.Width(cellText(row, col.DataPath)))
		}
	}

	// Print header
	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprint(w, pad(col.Label(), colWidths[i]))
	}
	fmt.Fprintln(w)

	// Print separator
	for i, width := range colWidths {
		if i > 0 {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprint(w, strings.Repeat("─", width))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(w, "  ")
			}
			fmt.Fprint(w, pad(cellText(row, col.DataPath), colWidths[i]))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.MutedMsg(fmt.Sprintf("(%d rows)", len(rows))))
}

func cellText(row record.Record, field string) string {
	v, _ := row.Get(field)
	return util.SingleLine(v.String())
}

// pad adds spaces to reach the desired width (no truncation).
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Truncate shortens a string to fit width, adding "..." if needed.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width > 3 {
		return string(runes[:width-3]) + "..."
	}
	return string(runes[:max(width, 0)])
}

// PadOrTruncate pads or truncates to exact width (for TUI table).
func PadOrTruncate(s string, width int) string {
	s = Truncate(s, width)
	return s + strings.Repeat(" ", max(width-len([]rune(s)), 0))
}
