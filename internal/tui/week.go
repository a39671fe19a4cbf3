package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"trainload/internal/analysis"
	"trainload/internal/service"
)

const sessionTableRows = 8

// WeekModel is the week screen: one Sunday..Saturday window of training load
type WeekModel struct {
	queryService *service.QueryService
	units        Units

	nav     *analysis.WeekNavigator
	view    *service.WeekView
	loading bool
	err     error

	days     table.Model
	sessions table.Model

	width  int
	height int
}

// NewWeekModel creates a new week model
func NewWeekModel(qs *service.QueryService, units Units, width, height int) WeekModel {
	return WeekModel{
		queryService: qs,
		units:        units,
		loading:      true,
		days:         newDayTable(),
		sessions:     newSessionTable(),
		width:        width,
		height:       height,
	}
}

type weekLoadedMsg struct {
	nav  *analysis.WeekNavigator
	view *service.WeekView
	err  error
}

// Init loads the current week
func (m WeekModel) Init() tea.Cmd {
	return m.load
}

func (m WeekModel) load() tea.Msg {
	ctx := context.Background()

	nav := m.nav
	if nav == nil {
		var err error
		nav, err = m.queryService.NewNavigator(ctx)
		if err != nil {
			return weekLoadedMsg{err: err}
		}
	}

	view, err := m.queryService.BuildWeekView(ctx, nav)
	return weekLoadedMsg{nav: nav, view: view, err: err}
}

// Update handles messages
func (m WeekModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case weekLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.nav = msg.nav
			m.view = msg.view
			m.days.SetRows(dayRows(msg.view))
			m.sessions.SetRows(sessionRows(msg.view, m.units))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// the navigator is shared with the load command; leave it alone until it returns
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "left", "h":
			if m.nav != nil && m.nav.Previous() {
				return m.reload()
			}
		case "right", "l":
			if m.nav != nil && m.nav.Next() {
				return m.reload()
			}
		case "t":
			if m.nav != nil && m.nav.Offset() != 0 {
				m.nav.Reset()
				return m.reload()
			}
		case "r":
			return m.reload()
		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.sessions, cmd = m.sessions.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m WeekModel) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.load
}

// View renders the week screen
func (m WeekModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.view == nil {
		return "\n  Loading week..."
	}

	var sections []string
	sections = append(sections, m.renderWeekHeader())

	left := m.renderDayCard()
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderStatsCard(), m.renderFitnessCard())
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))

	if chart := m.renderChart(); chart != "" {
		sections = append(sections, chart)
	}
	sections = append(sections, m.renderSessions())

	help := "←/h previous week  →/l next week  t this week  r refresh  s sync"
	if m.loading {
		help = "Loading..."
	}
	sections = append(sections, statusStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m WeekModel) renderWeekHeader() string {
	prev := arrowDisabledStyle.Render("◀")
	if m.view.CanGoToPreviousWeek {
		prev = arrowEnabledStyle.Render("◀")
	}
	next := arrowDisabledStyle.Render("▶")
	if m.view.CanGoToNextWeek {
		next = arrowEnabledStyle.Render("▶")
	}

	label := m.view.Window.Label()
	switch offset := m.view.Window.Offset; {
	case offset == 0:
		label += "  (this week)"
	case offset == -1:
		label += "  (last week)"
	default:
		label += fmt.Sprintf("  (%d weeks ago)", -offset)
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, prev, weekLabelStyle.Render(label), next)
}

func (m WeekModel) renderDayCard() string {
	title := cardTitleStyle.Render("Daily Load")
	lines := []string{title, m.days.View()}

	running := runningLoadStyle.Render(FormatLoad(m.view.Load.RunningTotal()))
	lines = append(lines, "", fmt.Sprintf("Running %s  Other %s",
		running, FormatLoad(m.view.Load.NonRunningTotal())))

	if skipped := m.view.Load.Skipped; skipped > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("%d session(s) with a bad date or load left out", skipped)))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m WeekModel) renderStatsCard() string {
	title := cardTitleStyle.Render("Monotony & Strain")

	if !m.view.HasData {
		mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)
		return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title,
			mutedStyle.Render("No training load this week")))
	}

	s := m.view.Stats
	lines := []string{
		RenderMetric("Weekly load", FormatLoad(s.Total), ""),
		RenderMetric("Daily mean", FormatLoad(s.Mean), ""),
		RenderMetric("Std deviation", FormatLoad(s.StandardDeviation), ""),
		RenderMetric("Monotony", FormatLoad(s.Monotony), ""),
		RenderMetric("Strain", FormatLoad(s.Strain), ""),
	}
	if s.HasAlert() {
		lines = append(lines, "", alertStyle.Width(38).Render(s.Alert))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m WeekModel) renderFitnessCard() string {
	title := cardTitleStyle.Render("Fitness")
	f := m.view.Fitness

	form := fmt.Sprintf("%.0f", f.TSB)
	trend := ""
	if f.TSB > 0 {
		trend = "+ fresh"
	} else if f.TSB < 0 {
		trend = "- fatigued"
	}

	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)
	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", f.CTL), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", f.ATL), ""),
		RenderMetric("Form (TSB)", form, trend),
		"",
		mutedStyle.Render(m.view.FormDescription),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m WeekModel) renderChart() string {
	totals := m.view.WeeklyTotals
	var hasLoad bool
	for _, v := range totals {
		if v > 0 {
			hasLoad = true
			break
		}
	}
	if !hasLoad {
		return ""
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Weekly Load - %d weeks to %s", len(totals), m.view.WeeklyLabels[len(totals)-1]))
	graph := asciigraph.Plot(totals,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Precision(0),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m WeekModel) renderSessions() string {
	title := cardTitleStyle.Render("Sessions")
	if len(m.view.Sessions) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No sessions this week"))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.sessions.View()))
}

func newDayTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Day", Width: 4},
			{Title: "Date", Width: 7},
			{Title: "Running", Width: 9},
			{Title: "Other", Width: 9},
			{Title: "Total", Width: 9},
		}),
		table.WithHeight(analysis.DaysPerWeek+1),
	)
	t.SetStyles(tableStyles())
	t.Blur()
	return t
}

func dayRows(v *service.WeekView) []table.Row {
	rows := make([]table.Row, 0, analysis.DaysPerWeek)
	for _, b := range v.Load.Buckets {
		rows = append(rows, table.Row{
			b.Date.Format("Mon"),
			b.Date.Format("Jan 02"),
			FormatLoad(b.RunningLoad),
			FormatLoad(b.NonRunningLoad),
			FormatLoad(b.Total()),
		})
	}
	return rows
}

func newSessionTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 7},
			{Title: "Name", Width: 22},
			{Title: "Type", Width: 10},
			{Title: "Time", Width: 8},
			{Title: "Dist", Width: 9},
			{Title: "Pace", Width: 6},
			{Title: "RPE", Width: 4},
			{Title: "Load", Width: 8},
			{Title: "Zone", Width: 10},
		}),
		table.WithHeight(sessionTableRows),
		table.WithFocused(true),
	)
	t.SetStyles(tableStyles())
	return t
}

func sessionRows(v *service.WeekView, units Units) []table.Row {
	rows := make([]table.Row, 0, len(v.Sessions))
	for _, s := range v.Sessions {
		rpe := "-"
		if s.PerceivedExertion != nil {
			rpe = strconv.Itoa(*s.PerceivedExertion)
		}
		pace := "-"
		if s.Running {
			pace = units.FormatPace(s.DurationSeconds, s.Distance)
		}
		rows = append(rows, table.Row{
			s.ExecutionDay.Format("Jan 02"),
			truncateName(s.Name, 22),
			truncateName(s.ActivityType, 10),
			FormatDuration(s.DurationSeconds),
			units.FormatDistance(s.Distance),
			pace,
			rpe,
			FormatLoad(s.TRIMP),
			analysis.LoadZone(s.TRIMP),
		})
	}
	return rows
}
