// Package diag renders a live diagnostics-dump view of the engine's
// internal state: held keys, the suspend queue, active submap, and
// pending multipurpose decisions, refreshed whenever the configured
// dump_diagnostics_key fires.
package diag

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the diagnostics view.
type Theme struct {
	Name       string
	Primary    lipgloss.Color // title bar
	Secondary  lipgloss.Color // labels, border
	Accent     lipgloss.Color // suspended/pending key highlight
	Error      lipgloss.Color // error badge
	Success    lipgloss.Color // quiescent badge
	Warning    lipgloss.Color // submap-active badge
	Background lipgloss.Color // panel background
	Text       lipgloss.Color // body text
	Dimmed     lipgloss.Color // quit line, debug text
	Separator  lipgloss.Color // debug separator style (the table rule itself uses Dimmed)
}

var themes = map[string]Theme{
	"nord": {
		Name:       "Nord",
		Primary:    lipgloss.Color("#88C0D0"),
		Secondary:  lipgloss.Color("#81A1C1"),
		Accent:     lipgloss.Color("#B48EAD"),
		Error:      lipgloss.Color("#BF616A"),
		Success:    lipgloss.Color("#A3BE8C"),
		Warning:    lipgloss.Color("#EBCB8B"),
		Background: lipgloss.Color("#2E3440"),
		Text:       lipgloss.Color("#E5E9F0"),
		Dimmed:     lipgloss.Color("#4C566A"),
		Separator:  lipgloss.Color("#3B4252"),
	},
	"dracula": {
		Name:       "Dracula",
		Primary:    lipgloss.Color("#BD93F9"),
		Secondary:  lipgloss.Color("#8BE9FD"),
		Accent:     lipgloss.Color("#FF79C6"),
		Error:      lipgloss.Color("#FF5555"),
		Success:    lipgloss.Color("#50FA7B"),
		Warning:    lipgloss.Color("#F1FA8C"),
		Background: lipgloss.Color("#282A36"),
		Text:       lipgloss.Color("#F8F8F2"),
		Dimmed:     lipgloss.Color("#6272A4"),
		Separator:  lipgloss.Color("#44475A"),
	},
	"solarized": {
		Name:       "Solarized Dark",
		Primary:    lipgloss.Color("#268BD2"),
		Secondary:  lipgloss.Color("#2AA198"),
		Accent:     lipgloss.Color("#D33682"),
		Error:      lipgloss.Color("#DC322F"),
		Success:    lipgloss.Color("#859900"),
		Warning:    lipgloss.Color("#B58900"),
		Background: lipgloss.Color("#002B36"),
		Text:       lipgloss.Color("#EEE8D5"),
		Dimmed:     lipgloss.Color("#586E75"),
		Separator:  lipgloss.Color("#073642"),
	},
	"mono": {
		Name:       "Mono",
		Primary:    lipgloss.Color("#E4E4E4"),
		Secondary:  lipgloss.Color("#B0B0B0"),
		Accent:     lipgloss.Color("#9A9A9A"),
		Error:      lipgloss.Color("#FF4040"),
		Success:    lipgloss.Color("#E4E4E4"),
		Warning:    lipgloss.Color("#B0B0B0"),
		Background: lipgloss.Color("#101010"),
		Text:       lipgloss.Color("#E4E4E4"),
		Dimmed:     lipgloss.Color("#707070"),
		Separator:  lipgloss.Color("#303030"),
	},
}

var themeOrder = []string{"nord", "dracula", "solarized", "mono"}

// ThemeNames returns the names of every built-in theme in cycle order.
func ThemeNames() []string { return themeOrder }

// LoadTheme returns the theme registered under name (an exact match
// against the lower-case keys in ThemeNames()), falling back to nord if
// unrecognized.
func LoadTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["nord"]
}

// NextTheme returns the theme after current in the cycle order, wrapping
// around.
func NextTheme(current string) Theme {
	return themes[nextThemeKey(current)]
}

// nextThemeKey returns the map key after current in the cycle order,
// wrapping around. Used by the 't' keybinding, which needs the key (not
// just the resolved Theme) to stay on the cycle across repeated presses.
func nextThemeKey(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

var (
	titleStyle       lipgloss.Style
	borderStyle      lipgloss.Style
	labelStyle       lipgloss.Style
	bodyStyle        lipgloss.Style
	dimmedStyle      lipgloss.Style
	accentStyle      lipgloss.Style
	quiescentBadge   lipgloss.Style
	submapBadge      lipgloss.Style
	errorBadge       lipgloss.Style
	debugTitleStyle  lipgloss.Style
	debugRuleStyle   lipgloss.Style
	debugHeaderStyle lipgloss.Style
	debugTimeStyle   lipgloss.Style
	debugCatStyle    lipgloss.Style
	debugMsgStyle    lipgloss.Style
	debugSepStyle    lipgloss.Style
)

func applyTheme(t Theme) {
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Background(t.Background).MarginBottom(1)
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Secondary).Padding(1, 2).Background(t.Background)
	labelStyle = lipgloss.NewStyle().Foreground(t.Secondary).Background(t.Background).Bold(true)
	bodyStyle = lipgloss.NewStyle().Foreground(t.Text).Background(t.Background)
	dimmedStyle = lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background)
	accentStyle = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background)
	quiescentBadge = lipgloss.NewStyle().Foreground(t.Success).Background(t.Background).Bold(true)
	submapBadge = lipgloss.NewStyle().Foreground(t.Warning).Background(t.Background).Bold(true)
	errorBadge = lipgloss.NewStyle().Foreground(t.Error).Background(t.Background).Bold(true)
	debugTitleStyle = lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background).Bold(true)
	debugRuleStyle = lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background)
	debugHeaderStyle = lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background).Bold(true)
	debugTimeStyle = lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background)
	debugCatStyle = lipgloss.NewStyle().Foreground(t.Warning).Background(t.Background)
	debugMsgStyle = lipgloss.NewStyle().Foreground(t.Dimmed).Background(t.Background)
	debugSepStyle = lipgloss.NewStyle().Foreground(t.Separator).Background(t.Background)
}
