package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trainload/internal/analysis"
)

const sessionColumns = `id, source, name, activity_type, execution_day, running,
	duration_seconds, perceived_exertion, average_heartrate, distance, trimp`

// UpsertSession inserts or updates a session
func (db *DB) UpsertSession(ctx context.Context, s *Session) error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, source, name, activity_type, execution_day, running,
			duration_seconds, perceived_exertion, average_heartrate, distance, trimp, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			name = excluded.name,
			activity_type = excluded.activity_type,
			execution_day = excluded.execution_day,
			running = excluded.running,
			duration_seconds = excluded.duration_seconds,
			perceived_exertion = excluded.perceived_exertion,
			average_heartrate = excluded.average_heartrate,
			distance = excluded.distance,
			trimp = excluded.trimp,
			updated_at = CURRENT_TIMESTAMP
	`,
		s.ID, s.Source, s.Name, s.ActivityType,
		s.ExecutionDay.Format(analysis.DateLayout), boolToInt(s.Running),
		s.DurationSeconds, s.PerceivedExertion, s.AverageHeartrate, s.Distance, s.TRIMP,
	)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", s.ID, err)
	}
	return nil
}

// GetSession retrieves a session by ID
func (db *DB) GetSession(ctx context.Context, id string) (*Session, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteSession removes a session
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListSessionsBetween returns sessions whose execution day lies in [from, to], oldest first
func (db *DB) ListSessionsBetween(ctx context.Context, from, to time.Time) ([]Session, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE execution_day >= ? AND execution_day <= ?
		ORDER BY execution_day ASC, id ASC
	`, from.Format(analysis.DateLayout), to.Format(analysis.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListLoadRecords returns every stored session as a load record, oldest first
func (db *DB) ListLoadRecords(ctx context.Context) ([]analysis.LoadRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT execution_day, trimp, running
		FROM sessions
		ORDER BY execution_day ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []analysis.LoadRecord
	for rows.Next() {
		var r analysis.LoadRecord
		var running int
		if err := rows.Scan(&r.ExecutionDay, &r.Load, &running); err != nil {
			return nil, err
		}
		r.Running = running == 1
		records = append(records, r)
	}
	return records, rows.Err()
}

// EarliestExecutionDay returns the first day with a stored session.
// ok is false when there are no sessions.
func (db *DB) EarliestExecutionDay(ctx context.Context) (day time.Time, ok bool, err error) {
	var s sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT MIN(execution_day) FROM sessions`).Scan(&s); err != nil {
		return time.Time{}, false, err
	}
	if !s.Valid {
		return time.Time{}, false, nil
	}
	day, err = time.Parse(analysis.DateLayout, s.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing execution day %q: %w", s.String, err)
	}
	return day, true, nil
}

// CountSessions returns the number of stored sessions
func (db *DB) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var s Session
	var executionDay string
	var running int
	var rpe sql.NullInt64
	var avgHR, distance sql.NullFloat64

	err := row.Scan(
		&s.ID, &s.Source, &s.Name, &s.ActivityType, &executionDay, &running,
		&s.DurationSeconds, &rpe, &avgHR, &distance, &s.TRIMP,
	)
	if err != nil {
		return nil, err
	}

	s.ExecutionDay, err = time.Parse(analysis.DateLayout, executionDay)
	if err != nil {
		return nil, fmt.Errorf("parsing execution day %q: %w", executionDay, err)
	}
	s.Running = running == 1
	if rpe.Valid {
		v := int(rpe.Int64)
		s.PerceivedExertion = &v
	}
	if avgHR.Valid {
		s.AverageHeartrate = &avgHR.Float64
	}
	if distance.Valid {
		s.Distance = &distance.Float64
	}
	return &s, nil
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
