package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trainload/internal/analysis"
	"trainload/internal/coachapi"
	"trainload/internal/store"
)

// Wednesday; its week runs Sun Jan 07 .. Sat Jan 13
var refNow = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func day(s string) time.Time {
	t, err := time.Parse(analysis.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func seedSessions(t *testing.T, db *store.DB, sessions ...store.Session) {
	t.Helper()
	for i := range sessions {
		s := sessions[i]
		if s.Source == "" {
			s.Source = store.SourceManual
		}
		require.NoError(t, db.UpsertSession(context.Background(), &s))
	}
}

type fakeLister struct {
	pages   [][]coachapi.Session
	failOn  int // page number that errors; 0 = never
	status  int // status of the failing page; 503 when unset
	afters  []time.Time
	perPage []int
}

func (f *fakeLister) ListSessions(_ context.Context, after time.Time, page, perPage int) ([]coachapi.Session, error) {
	f.afters = append(f.afters, after)
	f.perPage = append(f.perPage, perPage)
	if page == f.failOn {
		status := f.status
		if status == 0 {
			status = 503
		}
		return nil, &coachapi.APIError{StatusCode: status, Body: "unavailable"}
	}
	if page > len(f.pages) {
		return nil, nil
	}
	return f.pages[page-1], nil
}

type fakeFeed struct {
	records  []analysis.LoadRecord
	err      error
	from, to time.Time
}

func (f *fakeFeed) ListTrainingLoads(_ context.Context, from, to time.Time) ([]analysis.LoadRecord, error) {
	f.from, f.to = from, to
	return f.records, f.err
}
