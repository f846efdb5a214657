package table

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SearchSubmittedMsg carries the search text committed with enter.
type SearchSubmittedMsg struct {
	Owner string
	Query string
}

// SearchBox is a single-line search input. Keystrokes only edit the draft;
// the draft is reported once per enter.
type SearchBox struct {
	owner string
	input textinput.Model
}

// NewSearchBox creates a search box seeded with initial.
func NewSearchBox(owner, initial string) SearchBox {
	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 0 // no limit
	ti.Width = 30
	ti.Prompt = "/"
	// A static cursor keeps the box from scheduling blink ticks
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(initial)
	ti.CursorEnd()

	return SearchBox{owner: owner, input: ti}
}

// Draft returns the text currently in the box.
func (b SearchBox) Draft() string {
	return b.input.Value()
}

// Focused reports whether the box receives keys.
func (b SearchBox) Focused() bool {
	return b.input.Focused()
}

// Focus starts editing.
func (b SearchBox) Focus() SearchBox {
	b.input.Focus()
	return b
}

// Blur stops editing and keeps the draft.
func (b SearchBox) Blur() SearchBox {
	b.input.Blur()
	return b
}

// Submit returns the command that reports the draft.
func (b SearchBox) Submit() tea.Cmd {
	msg := SearchSubmittedMsg{Owner: b.owner, Query: b.input.Value()}
	return func() tea.Msg { return msg }
}

// Update handles a key while the box is focused. Enter submits and esc
// leaves the box; both are consumed here.
func (b SearchBox) Update(msg tea.KeyMsg) (SearchBox, tea.Cmd) {
	if !b.Focused() {
		return b, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		b = b.Blur()
		return b, b.Submit()
	case tea.KeyEsc:
		return b.Blur(), nil
	}

	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

// View renders the box.
func (b SearchBox) View() string {
	return b.input.View()
}
