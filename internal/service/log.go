package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"trainload/internal/analysis"
	"trainload/internal/store"
)

// SessionInput is a session entered by hand
type SessionInput struct {
	Day             time.Time
	Name            string
	ActivityType    string
	DurationSeconds int
	Rating          *int // perceived exertion 0-10
	Running         bool
}

// LogService records manual sessions
type LogService struct {
	store *store.DB
	newID func() string
}

// NewLogService creates a log service backed by db
func NewLogService(db *store.DB) *LogService {
	return &LogService{
		store: db,
		newID: func() string { return uuid.NewString() },
	}
}

// LogSession validates the input, computes its load and stores it
func (l *LogService) LogSession(ctx context.Context, in SessionInput) (*store.Session, error) {
	if in.Day.IsZero() {
		return nil, ErrMissingDay
	}
	if err := validateEffort(in.DurationSeconds, in.Rating); err != nil {
		return nil, err
	}

	activityType := in.ActivityType
	if activityType == "" {
		activityType = "Other"
		if in.Running {
			activityType = "Run"
		}
	}

	session := &store.Session{
		ID:                l.newID(),
		Source:            store.SourceManual,
		Name:              in.Name,
		ActivityType:      activityType,
		ExecutionDay:      analysis.CivilDate(in.Day),
		Running:           in.Running,
		DurationSeconds:   in.DurationSeconds,
		PerceivedExertion: in.Rating,
		TRIMP:             analysis.SessionTRIMP(in.DurationSeconds, in.Rating),
	}

	if err := l.store.UpsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("logging session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"day":        session.ExecutionDay.Format(analysis.DateLayout),
		"load":       session.TRIMP,
	}).Info("manual session logged")

	return session, nil
}

// DeleteSession removes the session with id and returns what was removed
func (l *LogService) DeleteSession(ctx context.Context, id string) (*store.Session, error) {
	session, err := l.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding session %s: %w", id, err)
	}
	if err := l.store.DeleteSession(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting session %s: %w", id, err)
	}

	logrus.WithFields(logrus.Fields{
		"session_id": id,
		"source":     session.Source,
		"day":        session.ExecutionDay.Format(analysis.DateLayout),
	}).Info("session deleted")

	return session, nil
}
