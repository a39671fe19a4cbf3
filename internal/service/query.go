package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"trainload/internal/analysis"
	"trainload/internal/store"
)

// LoadFeed is the coaching API's per-session load feed
type LoadFeed interface {
	ListTrainingLoads(ctx context.Context, from, to time.Time) ([]analysis.LoadRecord, error)
}

// QueryService provides read-only queries for the TUI and CLI
type QueryService struct {
	store *store.DB
	clock analysis.Clock
}

// NewQueryService creates a new query service
func NewQueryService(store *store.DB, clock analysis.Clock) *QueryService {
	if clock == nil {
		clock = analysis.SystemClock{}
	}
	return &QueryService{store: store, clock: clock}
}

// WeekView contains everything needed to render one week
type WeekView struct {
	Window analysis.WeekWindow
	Load   analysis.WeekLoad
	Stats  analysis.WeekStatistics

	// HasData is false when the week's total load is zero; its statistics are then not meaningful
	HasData bool

	CanGoToPreviousWeek bool
	CanGoToNextWeek     bool

	// Local views only
	Sessions        []store.Session
	Fitness         analysis.FitnessMetrics
	FormDescription string

	// Weekly load totals for the ChartWeeks weeks ending at Window
	WeeklyTotals []float64
	WeeklyLabels []string
}

// LoadRecords returns every stored session as a load record
func (q *QueryService) LoadRecords(ctx context.Context) ([]analysis.LoadRecord, error) {
	records, err := q.store.ListLoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	return records, nil
}

// NewNavigator returns a navigator over the stored history, positioned on this week
func (q *QueryService) NewNavigator(ctx context.Context) (*analysis.WeekNavigator, error) {
	records, err := q.LoadRecords(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.NewWeekNavigator(q.clock, records), nil
}

// BuildWeekView refreshes nav from the store and builds the view for its current week
func (q *QueryService) BuildWeekView(ctx context.Context, nav *analysis.WeekNavigator) (*WeekView, error) {
	records, err := q.LoadRecords(ctx)
	if err != nil {
		return nil, err
	}
	nav.SetRecords(records)

	window := nav.Window()
	view := buildView(records, window)
	view.CanGoToPreviousWeek = nav.CanGoToPreviousWeek()
	view.CanGoToNextWeek = nav.CanGoToNextWeek()
	view.WeeklyTotals, view.WeeklyLabels = weeklyTotals(records, q.clock.Now(), window.Offset)

	sessions, err := q.store.ListSessionsBetween(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("listing week sessions: %w", err)
	}
	view.Sessions = sessions

	asOf := window.End
	if today := analysis.CivilDate(q.clock.Now()); today.Before(asOf) {
		asOf = today
	}
	view.Fitness = analysis.GetCurrentFitness(analysis.DailyLoadsFromRecords(records), asOf)
	view.FormDescription = analysis.FormDescription(view.Fitness.TSB)

	if view.Load.Skipped > 0 {
		logrus.WithField("skipped", view.Load.Skipped).Warn("records with a bad day or load were left out")
	}

	return view, nil
}

// GetWeekView builds the view offset weeks from this one; the offset is clamped
// to the reachable range, so check view.Window.Offset for the week actually shown.
func (q *QueryService) GetWeekView(ctx context.Context, offset int) (*WeekView, error) {
	nav, err := q.NewNavigator(ctx)
	if err != nil {
		return nil, err
	}
	if applied := nav.SetOffset(offset); applied != offset {
		logrus.WithFields(logrus.Fields{"requested": offset, "applied": applied}).Debug("week offset clamped")
	}
	return q.BuildWeekView(ctx, nav)
}

// GetRemoteWeekView builds a view straight from the API's load feed, bypassing the store.
// Future offsets are pulled back to this week.
func (q *QueryService) GetRemoteWeekView(ctx context.Context, feed LoadFeed, offset int) (*WeekView, error) {
	if offset > 0 {
		offset = 0
	}
	now := q.clock.Now()
	window := analysis.NewWeekWindow(now, offset)

	records, err := feed.ListTrainingLoads(ctx, window.Previous().Start, window.End)
	if err != nil {
		return nil, wrapAPIError("fetching load feed", err)
	}

	view := buildView(records, window)
	view.CanGoToPreviousWeek, view.CanGoToNextWeek = analysis.NavigationGuards(window, records, now)
	return view, nil
}

func buildView(records []analysis.LoadRecord, window analysis.WeekWindow) *WeekView {
	load := analysis.AggregateWeek(records, window)

	// seven totals are always present, so this cannot fail
	stats, _ := analysis.ComputeWeekStatistics(load.DailyTotals())

	return &WeekView{
		Window:  window,
		Load:    load,
		Stats:   stats,
		HasData: stats.Total > 0,
	}
}

func weeklyTotals(records []analysis.LoadRecord, now time.Time, offset int) ([]float64, []string) {
	totals := make([]float64, 0, ChartWeeks)
	labels := make([]string, 0, ChartWeeks)
	for i := ChartWeeks - 1; i >= 0; i-- {
		w := analysis.NewWeekWindow(now, offset-i)
		wl := analysis.AggregateWeek(records, w)
		totals = append(totals, wl.RunningTotal()+wl.NonRunningTotal())
		labels = append(labels, w.Start.Format("Jan 02"))
	}
	return totals, labels
}

// DaySummary is one day of a WeekSummary
type DaySummary struct {
	Date    string  `json:"date"`
	Running float64 `json:"running"`
	Other   float64 `json:"other"`
	Total   float64 `json:"total"`
}

// WeekSummary is the printable form of a WeekView, rounded to 2 decimals
type WeekSummary struct {
	Offset            int          `json:"offset"`
	Start             string       `json:"start"`
	End               string       `json:"end"`
	Days              []DaySummary `json:"days"`
	HasData           bool         `json:"hasData"`
	Total             float64      `json:"total"`
	Mean              float64      `json:"mean"`
	StandardDeviation float64      `json:"standardDeviation"`
	Monotony          float64      `json:"monotony"`
	Strain            float64      `json:"strain"`
	Alert             string       `json:"alert,omitempty"`
	Skipped           int          `json:"skipped"`
	CanGoPrevious     bool         `json:"canGoToPreviousWeek"`
	CanGoNext         bool         `json:"canGoToNextWeek"`
}

// Summary flattens the view for printing
func (v *WeekView) Summary() WeekSummary {
	days := make([]DaySummary, 0, analysis.DaysPerWeek)
	for _, b := range v.Load.Buckets {
		days = append(days, DaySummary{
			Date:    b.Key(),
			Running: analysis.Round2(b.RunningLoad),
			Other:   analysis.Round2(b.NonRunningLoad),
			Total:   analysis.Round2(b.Total()),
		})
	}
	return WeekSummary{
		Offset:            v.Window.Offset,
		Start:             v.Window.Start.Format(analysis.DateLayout),
		End:               v.Window.End.Format(analysis.DateLayout),
		Days:              days,
		HasData:           v.HasData,
		Total:             analysis.Round2(v.Stats.Total),
		Mean:              analysis.Round2(v.Stats.Mean),
		StandardDeviation: analysis.Round2(v.Stats.StandardDeviation),
		Monotony:          analysis.Round2(v.Stats.Monotony),
		Strain:            analysis.Round2(v.Stats.Strain),
		Alert:             v.Stats.Alert,
		Skipped:           v.Load.Skipped,
		CanGoPrevious:     v.CanGoToPreviousWeek,
		CanGoNext:         v.CanGoToNextWeek,
	}
}
