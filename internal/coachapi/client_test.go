package coachapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"trainload/internal/analysis"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	c := NewClient(srv.URL+"/", ts)
	c.rateLimiter = newRateLimiter(time.Now, 0)
	return c
}

func TestListSessions(t *testing.T) {
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athletes/me/sessions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("completed_after"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("X-RateLimit-Limit", "200,2000")
		w.Header().Set("X-RateLimit-Usage", "10,100")
		fmt.Fprint(w, `[{"id":"s1","name":"Intervals","activityType":"Run","executionDay":"2024-01-08",
			"running":true,"durationSeconds":3600,"perceivedExertion":8,"trimp":null}]`)
	})

	sessions, err := c.ListSessions(context.Background(), after, 2, 50)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.True(t, sessions[0].Running)
	require.NotNil(t, sessions[0].PerceivedExertion)
	assert.Equal(t, 8, *sessions[0].PerceivedExertion)
	assert.Nil(t, sessions[0].TRIMP)
	assert.Nil(t, sessions[0].AverageHeartrate)

	short, daily := c.RateLimitStatus()
	assert.Equal(t, 190, short)
	assert.Equal(t, 1900, daily)
}

func TestListSessionsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	sessions, err := c.ListSessions(context.Background(), time.Time{}, 1, 10)
	require.Error(t, err)
	assert.Nil(t, sessions)
	assert.False(t, IsUnauthorized(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestListTrainingLoads(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athletes/me/training-loads", r.URL.Path)
		assert.Equal(t, "2024-01-07", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-01-13", r.URL.Query().Get("to"))
		fmt.Fprint(w, `[{"executionDay":"2024-01-08","trimp":45.5,"running":true},
			{"executionDay":"2024-01-09","trimp":20,"running":false}]`)
	})

	records, err := c.ListTrainingLoads(context.Background(),
		time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []analysis.LoadRecord{
		{ExecutionDay: "2024-01-08", Load: 45.5, Running: true},
		{ExecutionDay: "2024-01-09", Load: 20, Running: false},
	}, records)
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ListSessions(context.Background(), time.Time{}, 1, 10)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"a list"`)
	})

	_, err := c.ListTrainingLoads(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
}
