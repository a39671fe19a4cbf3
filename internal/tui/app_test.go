package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"trainload/internal/analysis"
	"trainload/internal/config"
	"trainload/internal/service"
	"trainload/internal/store"
)

func TestAppReloadsWeekAfterSyncDuringLoad(t *testing.T) {
	db := store.NewTestDB(t)
	ctx := context.Background()
	seed := func(s store.Session) {
		t.Helper()
		if err := db.UpsertSession(ctx, &s); err != nil {
			t.Fatalf("seeding session: %v", err)
		}
	}
	seed(store.Session{ID: "a", Source: store.SourceAPI, ExecutionDay: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), TRIMP: 50})

	qs := service.NewQueryService(db, analysis.FixedClock{T: refNow})
	app := NewApp(qs, nil, config.DefaultConfig().Display)

	// the initial load reads the store before the sync's last write
	stale := app.Init()()
	seed(store.Session{ID: "b", Source: store.SourceAPI, ExecutionDay: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), TRIMP: 30})

	if _, cmd := app.Update(SyncCompleteMsg{}); cmd != nil {
		t.Fatal("sync completion during a load should wait for that load")
	}

	_, cmd := app.Update(stale)
	if cmd == nil {
		t.Fatal("expected a reload once the stale load landed")
	}
	if !app.week.loading {
		t.Error("week should be loading again")
	}

	app.Update(cmd())
	if app.week.loading {
		t.Fatal("reload should have finished")
	}
	if got := app.week.view.Stats.Total; got != 80 {
		t.Errorf("week total = %v after reload, want 80", got)
	}

	// no further reload is queued
	if _, cmd := app.Update(weekLoadedMsg{nav: app.week.nav, view: app.week.view}); cmd != nil {
		t.Error("pending reload should fire only once")
	}
}

func TestAppReloadsWeekAfterSyncWhenIdle(t *testing.T) {
	db := store.NewTestDB(t)
	qs := service.NewQueryService(db, analysis.FixedClock{T: refNow})
	app := NewApp(qs, nil, config.DefaultConfig().Display)
	app.Update(app.Init()())

	_, cmd := app.Update(SyncCompleteMsg{})
	if cmd == nil {
		t.Fatal("idle week should reload right after a sync")
	}
	if !app.week.loading {
		t.Error("week should be loading")
	}
}

func TestSyncSummaryShowsHistory(t *testing.T) {
	m := NewSyncModel(nil)
	m.result = &service.SyncResult{
		SessionsStored: 3,
		TotalSessions:  42,
		HistoryStart:   time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC),
	}
	if got := m.renderSummary(); !strings.Contains(got, "42 sessions stored since Nov 20 2023") {
		t.Errorf("summary missing history line:\n%s", got)
	}

	m.result = &service.SyncResult{}
	if got := m.renderSummary(); strings.Contains(got, "stored since") {
		t.Errorf("empty history should not be described:\n%s", got)
	}
}
