package diag

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunp/keyremap/internal/engine"
)

const maxDebugLines = 50

// DebugEntry is one parsed line from the engine's logger, shown in the
// debug sub-panel when DebugMode is on.
type DebugEntry struct {
	Time     string
	Category string
	Message  string
}

// SnapshotMsg carries a fresh engine.Snapshot, sent whenever the
// configured diagnostics key fires.
type SnapshotMsg struct {
	Snapshot engine.Snapshot
}

// DebugLogMsg carries one parsed log line, sent by LogWriter.
type DebugLogMsg struct {
	Entry DebugEntry
}

// Model is the Bubble Tea model for the live diagnostics view.
type Model struct {
	Snapshot     engine.Snapshot
	HaveSnapshot bool
	Logger       *log.Logger
	DebugMode    bool
	DebugEntries []DebugEntry
	EjectKeyName string
	DiagKeyName  string
	themeKey     string
	quitting     bool
}

// NewModel builds a Model themed with themeKey (one of ThemeNames(),
// falling back to nord if unrecognized) and labeled with the
// eject/diagnostics key names shown in the footer.
func NewModel(themeKey, ejectKeyName, diagKeyName string, logger *log.Logger) Model {
	applyTheme(LoadTheme(themeKey))
	return Model{
		Logger:       logger,
		EjectKeyName: ejectKeyName,
		DiagKeyName:  diagKeyName,
		themeKey:     themeKey,
	}
}

// Init satisfies tea.Model. There is no startup command: the view is
// purely reactive to SnapshotMsg/DebugLogMsg fed in from outside.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update satisfies tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "t":
			m.themeKey = nextThemeKey(m.themeKey)
			applyTheme(LoadTheme(m.themeKey))
		case "d":
			m.DebugMode = !m.DebugMode
		}

	case SnapshotMsg:
		m.Snapshot = msg.Snapshot
		m.HaveSnapshot = true

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}

	return m, nil
}
