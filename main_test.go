package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainload/internal/service"
	"trainload/internal/store"
)

func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigInitAndPath(t *testing.T) {
	dir := setupHome(t)

	out, err := runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	out, err = runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "config", "trainload", "config.toml"))
	assert.Contains(t, out, filepath.Join(dir, "data", "trainload", "data.db"))
}

func TestLogThenWeek(t *testing.T) {
	setupHome(t)

	out, err := runCLI(t, "log", "--day", "2024-01-08", "--duration", "45m", "--rpe", "7", "--running", "--name", "Tempo")
	require.NoError(t, err)
	assert.Contains(t, out, "load 315.00")

	// far past offsets clamp to the earliest logged week
	out, err = runCLI(t, "week", "--json", "--offset", "-100000")
	require.NoError(t, err)

	var summary service.WeekSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "2024-01-07", summary.Start)
	assert.Equal(t, 315.0, summary.Total)
	assert.Equal(t, 315.0, summary.Days[1].Running)
	assert.False(t, summary.CanGoPrevious)
	assert.True(t, summary.CanGoNext)
	assert.True(t, summary.HasData)
}

func TestLogThenDelete(t *testing.T) {
	setupHome(t)

	out, err := runCLI(t, "log", "--day", "2024-01-08", "--duration", "30m", "--rpe", "4")
	require.NoError(t, err)
	_, id, found := strings.Cut(out, "\nid ")
	require.True(t, found, out)
	id = strings.TrimSpace(id)

	out, err = runCLI(t, "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted Other on 2024-01-08: load 120.00")

	out, err = runCLI(t, "week", "--json", "--offset", "-100000")
	require.NoError(t, err)
	var summary service.WeekSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.False(t, summary.HasData)

	_, err = runCLI(t, "delete", id)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestLogRejectsBadInput(t *testing.T) {
	setupHome(t)

	_, err := runCLI(t, "log", "--duration", "30m", "--rpe", "12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 10")

	_, err = runCLI(t, "log", "--day", "08/01/2024", "--duration", "30m")
	require.Error(t, err)
}

func TestWeekTextOutput(t *testing.T) {
	setupHome(t)

	out, err := runCLI(t, "week")
	require.NoError(t, err)
	assert.Contains(t, out, "No training load this week.")
	assert.Equal(t, 1, strings.Count(out, "Running"))
}

func TestSyncNeedsCredentials(t *testing.T) {
	setupHome(t)

	_, err := runCLI(t, "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
}
