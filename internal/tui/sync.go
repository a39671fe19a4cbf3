package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainload/internal/service"
)

// maxShownErrors caps the per-session errors listed after a sync
const maxShownErrors = 5

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	syncing     bool
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model; a nil service means the app runs offline
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if !m.syncing && m.syncService != nil {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.done = false
				m.err = nil
				m.result = nil
				return m, m.runSync
			}
		}
	}
	return m, nil
}

func (m SyncModel) runSync() tea.Msg {
	// no progress channel: results are shown once the sync returns
	result, syncErr := m.syncService.SyncAll(context.Background(), nil)
	return SyncDoneMsg{Result: result, Err: syncErr}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Session Sync")
	sections = append(sections, title)

	if m.syncService == nil {
		sections = append(sections, warningStyle.Render("\n  Offline: no API credentials configured."))
		sections = append(sections, statusStyle.Render("  Run 'trainload config init' and restart to enable sync."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to the week view"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, "\n  Syncing sessions...\n")
		sections = append(sections, statusStyle.Render("  This may take a moment..."))
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will fetch sessions completed since the last sync")
	lines = append(lines, "  and compute the training load of any that lack one.")
	lines = append(lines, "")

	if short, daily, ok := m.syncService.RateLimitStatus(); ok {
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  API requests left: %d (15min), %d (daily)", short, daily)))
		lines = append(lines, "")
	}
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	if m.result == nil {
		return ""
	}

	r := m.result
	var lines []string
	lines = append(lines, "")

	if r.SessionsStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d sessions synced", r.SessionsStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new sessions"))
	}
	if line := historyLine(r); line != "" {
		lines = append(lines, statusStyle.Render("  "+line))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d sessions skipped", r.SessionsSkipped)))
		for i, err := range r.Errors {
			if i == maxShownErrors {
				lines = append(lines, statusStyle.Render(fmt.Sprintf("    ... and %d more", len(r.Errors)-maxShownErrors)))
				break
			}
			lines = append(lines, "    "+err.Error())
		}
	}

	return strings.Join(lines, "\n")
}

// historyLine describes the stored history after a sync
func historyLine(r *service.SyncResult) string {
	if r.TotalSessions == 0 {
		return ""
	}
	if r.HistoryStart.IsZero() {
		return fmt.Sprintf("%d sessions stored", r.TotalSessions)
	}
	return fmt.Sprintf("%d sessions stored since %s", r.TotalSessions, r.HistoryStart.Format("Jan 02 2006"))
}
