// Package views renders panel content as plain strings, leaving state and
// key handling to the update package.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle flips between the two supported themes.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

type palette struct {
	header lipgloss.Style
	status lipgloss.Style
	errorc lipgloss.Style
	panel  lipgloss.Style
	banner lipgloss.Style
	footer lipgloss.Style
}

var palettes = map[Theme]palette{
	ThemeDark: {
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		errorc: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		banner: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1).Foreground(lipgloss.Color("11")),
		footer: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	},
	ThemeLight: {
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		errorc: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		panel:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		banner: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1).Foreground(lipgloss.Color("3")),
		footer: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	},
}

func paletteFor(t Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[ThemeDark]
}

type AppData struct {
	Header     string
	LeftPane   string
	RightPane  string
	StatusLine string
	Footer     string
	Banner     string
	Theme      Theme
}

func RenderApp(data AppData) string {
	p := paletteFor(data.Theme)

	left := p.panel.Width(58).Render(data.LeftPane)
	right := p.panel.Width(58).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := p.status.Render(data.StatusLine)
	if strings.Contains(strings.ToLower(data.StatusLine), "error") {
		status = p.errorc.Render(data.StatusLine)
	}

	lines := []string{p.header.Render(data.Header)}
	if data.Banner != "" {
		lines = append(lines, p.banner.Render(data.Banner))
	}
	lines = append(lines, row, status)
	if data.Footer != "" {
		lines = append(lines, p.footer.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

func RenderMarkdown(md string, theme Theme) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	style := "dark"
	if theme == ThemeLight {
		style = "light"
	}
	out, err := glamour.Render(md, style)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
