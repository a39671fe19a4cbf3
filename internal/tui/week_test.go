package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"trainload/internal/analysis"
	"trainload/internal/config"
	"trainload/internal/service"
	"trainload/internal/store"
)

var refNow = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func newTestWeekModel(t *testing.T, sessions ...store.Session) WeekModel {
	t.Helper()
	db := store.NewTestDB(t)
	for i := range sessions {
		if err := db.UpsertSession(context.Background(), &sessions[i]); err != nil {
			t.Fatalf("seeding session: %v", err)
		}
	}
	qs := service.NewQueryService(db, analysis.FixedClock{T: refNow})
	return NewWeekModel(qs, NewUnits(config.DefaultConfig().Display), 120, 40)
}

// run executes cmd and feeds its message back, as the bubbletea runtime would
func run(t *testing.T, m WeekModel, cmd tea.Cmd) WeekModel {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(WeekModel)
}

func press(t *testing.T, m WeekModel, key string) WeekModel {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return run(t, next.(WeekModel), cmd)
}

func TestWeekModelNavigation(t *testing.T) {
	m := newTestWeekModel(t,
		store.Session{ID: "a", Source: store.SourceManual, Name: "Long run", ExecutionDay: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Running: true, TRIMP: 50},
		store.Session{ID: "b", Source: store.SourceManual, Name: "Swim", ExecutionDay: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), TRIMP: 20},
	)
	m = run(t, m, m.Init())

	if m.view == nil || m.view.Window.Offset != 0 {
		t.Fatal("expected the current week after init")
	}
	if !strings.Contains(m.View(), "Long run") {
		t.Error("current week should list its session")
	}

	// next is guarded on the current week
	m = press(t, m, "right")
	if m.view.Window.Offset != 0 {
		t.Errorf("offset = %d after blocked next, want 0", m.view.Window.Offset)
	}

	m = press(t, m, "left")
	if m.view.Window.Offset != -1 {
		t.Fatalf("offset = %d after previous, want -1", m.view.Window.Offset)
	}
	if !strings.Contains(m.View(), "Swim") {
		t.Error("last week should list its session")
	}

	// nothing earlier than last week
	m = press(t, m, "h")
	if m.view.Window.Offset != -1 {
		t.Errorf("offset = %d after blocked previous, want -1", m.view.Window.Offset)
	}

	m = press(t, m, "t")
	if m.view.Window.Offset != 0 {
		t.Errorf("offset = %d after 't', want 0", m.view.Window.Offset)
	}
}

func TestWeekModelEmptyWeek(t *testing.T) {
	m := newTestWeekModel(t)
	m = run(t, m, m.Init())

	view := m.View()
	if !strings.Contains(view, "No training load this week") {
		t.Error("empty week should say there is no load")
	}
	if strings.Contains(view, analysis.MonotonyAlertMessage) {
		t.Error("empty week must not raise the monotony alert")
	}
}

func TestWeekModelShowsAlert(t *testing.T) {
	var sessions []store.Session
	for i := 0; i < 7; i++ {
		sessions = append(sessions, store.Session{
			ID:           string(rune('a' + i)),
			Source:       store.SourceManual,
			ExecutionDay: time.Date(2024, 1, 7+i, 0, 0, 0, 0, time.UTC),
			TRIMP:        40 + float64(i%2),
		})
	}
	m := newTestWeekModel(t, sessions...)
	m = run(t, m, m.Init())

	if !m.view.Stats.HasAlert() {
		t.Fatalf("monotony %.2f should raise the alert", m.view.Stats.Monotony)
	}
	if !strings.Contains(m.View(), "High training monotony") {
		t.Error("alert text missing from the view")
	}
}

func TestWeekModelIgnoresKeysWhileLoading(t *testing.T) {
	m := newTestWeekModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if cmd != nil {
		t.Error("navigation while loading should be ignored")
	}
	if !next.(WeekModel).loading {
		t.Error("model should still be loading")
	}
}

func TestUnitsFormatting(t *testing.T) {
	tenK := 10000.0
	km := NewUnits(config.DisplayConfig{DistanceUnit: "km", PaceUnit: "min/km"})
	mi := NewUnits(config.DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"})

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"km distance", km.FormatDistance(&tenK), "10.0 km"},
		{"mi distance", mi.FormatDistance(&tenK), "6.2 mi"},
		{"nil distance", km.FormatDistance(nil), "-"},
		{"km pace", km.FormatPace(3000, &tenK), "5:00"},
		{"mi pace", mi.FormatPace(3000, &tenK), "8:03"},
		{"nil pace", km.FormatPace(3000, nil), "-"},
		{"duration", FormatDuration(3900), "1h 05m"},
		{"short duration", FormatDuration(2700), "45m"},
		{"load", FormatLoad(315.004), "315.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
