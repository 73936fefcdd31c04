package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arjunp/keyremap/internal/keycode"
)

const panelWidth = 72

// View satisfies tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("KEYREMAPD — live diagnostics"))
	b.WriteString("\n")

	var body strings.Builder
	if !m.HaveSnapshot {
		body.WriteString(dimmedStyle.Render(fmt.Sprintf("waiting for %s ...", m.DiagKeyName)))
	} else {
		body.WriteString(m.renderSnapshot())
	}

	if m.DebugMode {
		body.WriteString("\n\n")
		body.WriteString(m.renderDebugPanel())
	}

	b.WriteString(borderStyle.Width(panelWidth).Render(body.String()))
	b.WriteString("\n")
	b.WriteString(dimmedStyle.Render(fmt.Sprintf(
		"q quit · t theme · d debug · %s eject · %s dump", m.EjectKeyName, m.DiagKeyName)))
	return b.String()
}

func (m Model) renderSnapshot() string {
	s := m.Snapshot
	var lines []string

	badge := quiescentBadge.Render("QUIESCENT")
	if s.SubmapOn {
		badge = submapBadge.Render("SUBMAP ACTIVE")
	} else if len(s.HeldInput) > 0 {
		badge = quiescentBadge.Render("ACTIVE")
	}
	lines = append(lines, labelStyle.Render("seq ")+bodyStyle.Render(fmt.Sprintf("%d", s.Seq))+"  "+badge)
	lines = append(lines, "")
	lines = append(lines, labelStyle.Render("held input:  ")+renderKeys(s.HeldInput))
	lines = append(lines, labelStyle.Render("held output: ")+renderKeys(s.HeldOutput))
	lines = append(lines, labelStyle.Render("suspended:   ")+accentStyle.Render(keyListOrNone(s.Suspended)))
	lines = append(lines, labelStyle.Render("pending mp:  ")+accentStyle.Render(keyListOrNone(s.PendingMP)))

	return strings.Join(lines, "\n")
}

func renderKeys(keys []keycode.Key) string {
	return bodyStyle.Render(keyListOrNone(keys))
}

func keyListOrNone(keys []keycode.Key) string {
	if len(keys) == 0 {
		return "—"
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

const debugPanelMaxLines = 8

func (m Model) renderDebugPanel() string {
	var b strings.Builder
	b.WriteString(debugTitleStyle.Render("debug log"))
	b.WriteString("\n")
	b.WriteString(debugRuleStyle.Render(strings.Repeat("─", panelWidth-6)))
	b.WriteString("\n")
	b.WriteString(debugHeaderStyle.Render(fmt.Sprintf("%-8s %-10s %s", "TIME", "CATEGORY", "MESSAGE")))
	b.WriteString("\n")

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, e := range entries {
		b.WriteString(debugTimeStyle.Render(fmt.Sprintf("%-8s", e.Time)))
		b.WriteString(" ")
		b.WriteString(debugCatStyle.Render(fmt.Sprintf("%-10s", e.Category)))
		b.WriteString(" ")
		b.WriteString(debugMsgStyle.Render(e.Message))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
