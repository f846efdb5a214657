package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/imgajeed76/lttable/internal/ui/styles"
)

// Choice is one candidate filter value and whether it is checked.
type Choice struct {
	Value    string
	Selected bool
}

// FilterSavedMsg carries the full checkbox state of a column filter when
// the user saves it. Unchecked values are included.
type FilterSavedMsg struct {
	Owner     string
	DataPath  string
	Selection []Choice
}

// ColumnFilter is the checkbox popover of one column. It always opens with
// nothing checked.
type ColumnFilter struct {
	owner    string
	dataPath string
	choices  []Choice
	cursor   int
}

// NewColumnFilter builds the popover for dataPath. Duplicate candidates
// keep their first position.
func NewColumnFilter(owner, dataPath string, candidates []string) ColumnFilter {
	seen := make(map[string]bool, len(candidates))
	choices := make([]Choice, 0, len(candidates))
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		choices = append(choices, Choice{Value: c})
	}
	return ColumnFilter{owner: owner, dataPath: dataPath, choices: choices}
}

// DataPath returns the column the popover belongs to.
func (f ColumnFilter) DataPath() string {
	return f.dataPath
}

// Selection returns a copy of the checkbox state.
func (f ColumnFilter) Selection() []Choice {
	return append([]Choice(nil), f.choices...)
}

// Cursor returns the index of the highlighted candidate.
func (f ColumnFilter) Cursor() int {
	return f.cursor
}

// Toggle flips candidate i.
func (f ColumnFilter) Toggle(i int) ColumnFilter {
	if i < 0 || i >= len(f.choices) {
		return f
	}
	f.choices = f.Selection()
	f.choices[i].Selected = !f.choices[i].Selected
	return f
}

// Save returns the command that reports the checkbox state.
func (f ColumnFilter) Save() tea.Cmd {
	msg := FilterSavedMsg{Owner: f.owner, DataPath: f.dataPath, Selection: f.Selection()}
	return func() tea.Msg { return msg }
}

// Update handles a key while the popover is open.
func (f ColumnFilter) Update(msg tea.KeyMsg) (ColumnFilter, tea.Cmd) {
	switch {
	case key.Matches(msg, filterKeys.Up):
		if f.cursor > 0 {
			f.cursor--
		}
	case key.Matches(msg, filterKeys.Down):
		if f.cursor < len(f.choices)-1 {
			f.cursor++
		}
	case key.Matches(msg, filterKeys.Toggle):
		f = f.Toggle(f.cursor)
	case key.Matches(msg, filterKeys.Save):
		return f, f.Save()
	}
	return f, nil
}

// View renders the popover box.
func (f ColumnFilter) View() string {
	var sb strings.Builder
	sb.WriteString(styles.SectionHeader(fmt.Sprintf("Filter %s", f.dataPath)))
	for i, c := range f.choices {
		sb.WriteString("\n")
		marker := " "
		if i == f.cursor {
			marker = styles.SymbolCursor
		}
		line := fmt.Sprintf("%s %s %s", marker, styles.Checkbox(c.Selected), c.Value)
		if i == f.cursor {
			line = styles.Render(styles.SelectedStyle, line)
		}
		sb.WriteString(line)
	}
	sb.WriteString("\n")
	sb.WriteString(styles.MutedMsg("space toggle  enter save  esc close"))
	return styles.Render(styles.PopoverStyle, sb.String())
}
