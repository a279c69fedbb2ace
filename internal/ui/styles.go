package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tnslabs/waconsole/internal/models"
)

// Theme collects the styles every screen draws with. Agents get the
// dark palette, admins the light one, so it is always obvious which
// shell you are in.
type Theme struct {
	Title       lipgloss.Style
	Selected    lipgloss.Style
	Normal      lipgloss.Style
	Help        lipgloss.Style
	Error       lipgloss.Style
	Status      lipgloss.Style
	FromMe      lipgloss.Style
	FromOther   lipgloss.Style
	Header      lipgloss.Style
	Input       lipgloss.Style
	Badge       lipgloss.Style
	Pending     lipgloss.Style
	Failed      lipgloss.Style
	SidebarItem lipgloss.Style
	SidebarSel  lipgloss.Style
}

func darkTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")).
			MarginBottom(1),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")),
		FromMe: lipgloss.NewStyle().
			Foreground(lipgloss.Color("120")).
			Align(lipgloss.Right),
		FromOther: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true),
		Input: lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Bold(true),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("22")).
			Padding(0, 1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		SidebarItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
		SidebarSel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
	}
}

func lightTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("25")).
			MarginBottom(1),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("25")),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("236")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")).
			Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("31")),
		FromMe: lipgloss.NewStyle().
			Foreground(lipgloss.Color("28")).
			Align(lipgloss.Right),
		FromOther: lipgloss.NewStyle().
			Foreground(lipgloss.Color("236")),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
		Input: lipgloss.NewStyle().
			Foreground(lipgloss.Color("31")).
			Bold(true),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("25")).
			Padding(0, 1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")),
		SidebarItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		SidebarSel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("25")),
	}
}

// ThemeForRole maps a role onto its shell palette.
func ThemeForRole(role string) Theme {
	if role == models.RoleAdmin {
		return lightTheme()
	}
	return darkTheme()
}
