package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainload/internal/analysis"
)

func date(s string) time.Time {
	t, err := time.Parse(analysis.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func TestUpsertAndGetSession(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	s := &Session{
		ID:                "api-1",
		Source:            SourceAPI,
		Name:              "Tempo run",
		ActivityType:      "Run",
		ExecutionDay:      date("2024-01-08"),
		Running:           true,
		DurationSeconds:   2700,
		PerceivedExertion: intPtr(7),
		Distance:          floatPtr(9000),
		TRIMP:             315,
	}
	require.NoError(t, db.UpsertSession(ctx, s))

	got, err := db.GetSession(ctx, "api-1")
	require.NoError(t, err)
	assert.Equal(t, "Tempo run", got.Name)
	assert.True(t, got.Running)
	assert.True(t, got.ExecutionDay.Equal(date("2024-01-08")))
	require.NotNil(t, got.PerceivedExertion)
	assert.Equal(t, 7, *got.PerceivedExertion)
	assert.Nil(t, got.AverageHeartrate)
	require.NotNil(t, got.Distance)
	assert.Equal(t, 9000.0, *got.Distance)
	assert.Equal(t, 315.0, got.TRIMP)

	// update in place
	s.TRIMP = 270
	s.PerceivedExertion = intPtr(6)
	require.NoError(t, db.UpsertSession(ctx, s))

	got, err = db.GetSession(ctx, "api-1")
	require.NoError(t, err)
	assert.Equal(t, 270.0, got.TRIMP)
	assert.Equal(t, 6, *got.PerceivedExertion)

	count, err := db.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertSessionRequiresID(t *testing.T) {
	db := NewTestDB(t)
	err := db.UpsertSession(context.Background(), &Session{ExecutionDay: date("2024-01-08")})
	require.Error(t, err)
}

func TestUpsertSessionRejectsNegativeLoad(t *testing.T) {
	db := NewTestDB(t)
	err := db.UpsertSession(context.Background(), &Session{
		ID:           "bad",
		Source:       SourceManual,
		ExecutionDay: date("2024-01-08"),
		TRIMP:        -1,
	})
	require.Error(t, err)
}

func TestGetSessionNotFound(t *testing.T) {
	db := NewTestDB(t)
	_, err := db.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertSession(ctx, &Session{ID: "x", Source: SourceManual, ExecutionDay: date("2024-01-08")}))
	require.NoError(t, db.DeleteSession(ctx, "x"))
	assert.ErrorIs(t, db.DeleteSession(ctx, "x"), ErrSessionNotFound)
}

func TestListSessionsBetween(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	for i, d := range []string{"2024-01-06", "2024-01-07", "2024-01-10", "2024-01-13", "2024-01-14"} {
		require.NoError(t, db.UpsertSession(ctx, &Session{
			ID:           d,
			Source:       SourceAPI,
			ExecutionDay: date(d),
			TRIMP:        float64(10 * (i + 1)),
		}))
	}

	sessions, err := db.ListSessionsBetween(ctx, date("2024-01-07"), date("2024-01-13"))
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2024-01-07", sessions[0].ID)
	assert.Equal(t, "2024-01-13", sessions[2].ID)
}

func TestListLoadRecords(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	records, err := db.ListLoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, db.UpsertSession(ctx, &Session{ID: "b", Source: SourceAPI, ExecutionDay: date("2024-01-09"), TRIMP: 10}))
	require.NoError(t, db.UpsertSession(ctx, &Session{ID: "a", Source: SourceAPI, ExecutionDay: date("2024-01-08"), Running: true, TRIMP: 40}))

	records, err = db.ListLoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []analysis.LoadRecord{
		{ExecutionDay: "2024-01-08", Load: 40, Running: true},
		{ExecutionDay: "2024-01-09", Load: 10, Running: false},
	}, records)
}

func TestEarliestExecutionDay(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, ok, err := db.EarliestExecutionDay(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.UpsertSession(ctx, &Session{ID: "b", Source: SourceAPI, ExecutionDay: date("2024-01-09")}))
	require.NoError(t, db.UpsertSession(ctx, &Session{ID: "a", Source: SourceAPI, ExecutionDay: date("2023-11-30")}))

	day, ok, err := db.EarliestExecutionDay(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2023-11-30", day.Format(analysis.DateLayout))
}
