package styles

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolAsc     = "▲"
	SymbolDesc    = "▼"
	SymbolChecked = "☑"
	SymbolBox     = "☐"
	SymbolFilter  = "⚲"
	SymbolCursor  = "›"
)

var forceNoColor atomic.Bool

// SetNoColor disables colors regardless of the environment (--no-color)
func SetNoColor(v bool) {
	forceNoColor.Store(v)
}

// NoColor checks if colors should be disabled
func NoColor() bool {
	return forceNoColor.Load() || os.Getenv("NO_COLOR") != "" || os.Getenv("LTTABLE_NO_COLOR") != ""
}

// IsAccessible checks if accessibility mode is enabled
// When enabled: no spinner, ASCII symbols
func IsAccessible() bool {
	return os.Getenv("LTTABLE_ACCESSIBLE") == "1" || os.Getenv("LTTABLE_ACCESSIBLE") == "true"
}

// Base text styles
var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(Muted)
	Underline = lipgloss.NewStyle().Underline(true)
)

// Semantic styles - use these instead of raw colors
var (
	// Message types
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// Table display
	TitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	HeaderStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	HeaderFocused   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(ColorHeader)
	FilterOnStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorFilterOn)
	RowIDStyle      = lipgloss.NewStyle().Foreground(ColorRowID)
	PageActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPageActive)
	DisabledStyle   = lipgloss.NewStyle().Foreground(ColorDisabled).Faint(true)
	PopoverStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BgBorder).
			Padding(0, 1)

	// Interactive TUI
	SelectedStyle = lipgloss.NewStyle().
			Background(BgHighlight).
			Foreground(TextPrimary)

	// Help bar
	HelpKey   = lipgloss.NewStyle().Foreground(Accent)
	HelpValue = lipgloss.NewStyle().Foreground(Muted)
)

// Render applies a style if colors are enabled
func Render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// SortArrow returns the unstyled indicator for a sort direction ("asc" or
// "desc"). Header cells are padded before styling, so it carries no escapes.
func SortArrow(direction string) string {
	asc, desc := SymbolAsc, SymbolDesc
	if IsAccessible() {
		asc, desc = "^", "v"
	}
	if direction == "asc" {
		return asc
	}
	return desc
}

// Checkbox returns a checked or empty box
func Checkbox(checked bool) string {
	if IsAccessible() || NoColor() {
		if checked {
			return "[x]"
		}
		return "[ ]"
	}
	if checked {
		return Render(SuccessStyle, SymbolChecked)
	}
	return SymbolBox
}

// RowID formats a row identifier
func RowID(id string) string {
	return Render(RowIDStyle, id)
}

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", Render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return Render(ErrorStyle, "Error: "+title)
}

// WarningMsg formats a warning message
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", Render(WarningStyle, symbol), msg)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return Render(MutedStyle, msg)
}

// SectionHeader formats a section header
func SectionHeader(title string) string {
	return Render(Bold, title)
}

// HelpLine formats a help line (key description)
func HelpLine(key, description string) string {
	return fmt.Sprintf("  %s %s", Render(HelpKey, key), Render(MutedStyle, description))
}

// Indent returns text indented by n spaces
func Indent(text string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func Yellow(s string) string    { return Render(WarningStyle, s) }
func Green(s string) string     { return Render(SuccessStyle, s) }
func Red(s string) string       { return Render(ErrorStyle, s) }
func Cyan(s string) string      { return Render(InfoStyle, s) }
func Mute(s string) string      { return Render(MutedStyle, s) }
func ErrorText(s string) string { return Render(ErrorStyle, s) }

// Printf-style color functions
func Mutef(format string, a ...any) string  { return Mute(fmt.Sprintf(format, a...)) }
func Boldf(format string, a ...any) string  { return Render(Bold, fmt.Sprintf(format, a...)) }
func Errorf(format string, a ...any) string { return ErrorText(fmt.Sprintf(format, a...)) }
