package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainload/internal/config"
	"trainload/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenWeek Screen = iota
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	week       WeekModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	queryService *service.QueryService
	syncService  *service.SyncService
	units        Units

	// Window dimensions
	width  int
	height int

	// Status message
	status string

	// a sync finished while the week was loading; reload once that load lands
	reloadPending bool
}

// NewApp creates a new App with all dependencies. syncService may be nil when
// no API credentials are configured; the week view then works from the local store.
func NewApp(queryService *service.QueryService, syncService *service.SyncService, display config.DisplayConfig) *App {
	units := NewUnits(display)
	app := &App{
		screen:       ScreenWeek,
		queryService: queryService,
		syncService:  syncService,
		units:        units,
		week:         NewWeekModel(queryService, units, 0, 0),
		syncScreen:   NewSyncModel(syncService),
		help:         NewHelpModel(),
	}
	if syncService == nil {
		app.status = "offline: showing local sessions only"
	}
	return app
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.week.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (unless in sync mode)
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenWeek
				return a, nil
			case "2", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case SyncCompleteMsg:
		// Rebuild the week view after sync, keeping the week on screen
		if a.week.loading {
			a.reloadPending = true
			return a, nil
		}
		m, cmd := a.week.reload()
		a.week = m.(WeekModel)
		return a, cmd

	case weekLoadedMsg:
		// may arrive while another screen is showing
		m, cmd := a.week.Update(msg)
		a.week = m.(WeekModel)
		if a.reloadPending {
			a.reloadPending = false
			m, cmd = a.week.reload()
			a.week = m.(WeekModel)
		}
		return a, cmd
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenWeek:
		var m tea.Model
		m, cmd = a.week.Update(msg)
		a.week = m.(WeekModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenWeek:
		content = a.week.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Training Load")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Week", ScreenWeek},
		{"2", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
