package console

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Gruvbox palette
var (
	gruvboxFgDark  = text.Colors{text.FgHiBlack}
	gruvboxFgLight = text.Colors{text.FgWhite}
	gruvboxRed     = text.Colors{text.FgRed}
	gruvboxGreen   = text.Colors{text.FgGreen}
	gruvboxYellow  = text.Colors{text.FgYellow}
	gruvboxBlue    = text.Colors{text.FgBlue}
	gruvboxAqua    = text.Colors{text.FgCyan}

	gruvboxGreenBright  = text.Colors{text.FgHiGreen}
	gruvboxBlueBright   = text.Colors{text.FgHiBlue}
	gruvboxAquaBright   = text.Colors{text.FgHiCyan}
	gruvboxPurpleBright = text.Colors{text.FgHiMagenta}
)

// Theme holds the semantic colors used for terminal output
var Theme = struct {
	Success   text.Colors
	Info      text.Colors
	Warning   text.Colors
	Error     text.Colors
	Heading   text.Colors
	Subtle    text.Colors
	Important text.Colors
	Accent    text.Colors
	Added     text.Colors
	Deleted   text.Colors

	TableHeader text.Colors
	TableBorder text.Colors
	TableRow    text.Colors
	TableAltRow text.Colors
	Title       text.Colors
}{
	Success:   gruvboxGreen,
	Info:      gruvboxBlue,
	Warning:   gruvboxYellow,
	Error:     gruvboxRed,
	Heading:   append(gruvboxAquaBright, text.Bold),
	Subtle:    gruvboxFgDark,
	Important: append(gruvboxPurpleBright, text.Bold),
	Accent:    gruvboxAqua,
	Added:     gruvboxGreenBright,
	Deleted:   text.Colors{text.FgHiRed},

	TableHeader: append(gruvboxBlueBright, text.Bold),
	TableBorder: gruvboxBlue,
	TableRow:    gruvboxFgLight,
	TableAltRow: text.Colors{text.FgWhite, text.Faint},
	Title:       append(gruvboxAquaBright, text.Bold),
}

// Panel border colors
var (
	BorderInfo    = lipgloss.Color("#83a598")
	BorderSuccess = lipgloss.Color("#b8bb26")
	BorderWarning = lipgloss.Color("#fabd2f")
	BorderError   = lipgloss.Color("#fb4934")
	BorderConfig  = lipgloss.Color("#8ec07c")
)

// tableStyle returns the rounded table style used for every table
func (c *Console) tableStyle() table.Style {
	style := table.StyleRounded
	if c.colors {
		style.Color.Header = Theme.TableHeader
		style.Color.Border = Theme.TableBorder
		style.Color.Row = Theme.TableRow
		style.Color.RowAlternate = Theme.TableAltRow
		style.Title.Colors = Theme.Title
	}
	style.Title.Align = text.AlignLeft
	style.Options.DrawBorder = true
	style.Options.SeparateColumns = true
	style.Options.SeparateHeader = true
	style.Options.SeparateRows = false
	style.Box.PaddingLeft = " "
	style.Box.PaddingRight = " "
	return style
}
