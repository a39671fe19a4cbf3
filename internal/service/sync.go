package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"trainload/internal/analysis"
	"trainload/internal/coachapi"
	"trainload/internal/config"
	"trainload/internal/store"
)

// SessionLister is the part of the coaching API a sync needs
type SessionLister interface {
	ListSessions(ctx context.Context, after time.Time, page, perPage int) ([]coachapi.Session, error)
}

// SyncService orchestrates syncing sessions from the coaching API
type SyncService struct {
	client  SessionLister
	store   *store.DB
	hrZones analysis.HRZones
	clock   analysis.Clock
}

// NewSyncService creates a new sync service with athlete config for HR-based load
func NewSyncService(client SessionLister, store *store.DB, athleteCfg config.AthleteConfig, clock analysis.Clock) *SyncService {
	zones := analysis.DefaultZones()
	if athleteCfg.RestingHR > 0 {
		zones.RestingHR = athleteCfg.RestingHR
	}
	if athleteCfg.MaxHR > 0 {
		zones.MaxHR = athleteCfg.MaxHR
	}
	if clock == nil {
		clock = analysis.SystemClock{}
	}
	return &SyncService{
		client:  client,
		store:   store,
		hrZones: zones,
		clock:   clock,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Page           int
	Fetched        int
	Stored         int
	CurrentSession string
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	SessionsFetched int
	SessionsStored  int
	SessionsSkipped int
	Since           time.Time // zero on a first sync
	Errors          []error

	// Local history after the sync
	TotalSessions int
	HistoryStart  time.Time // zero when nothing is stored
}

// LoadSource names where a stored session's load came from
type LoadSource string

const (
	LoadFromAPI       LoadSource = "api"
	LoadFromRating    LoadSource = "rating"
	LoadFromHeartRate LoadSource = "heartrate"
	LoadNone          LoadSource = "none"
)

// SyncAll pulls every session completed since the last successful sync and stores it.
// A session that fails validation or storage is recorded in Errors and skipped;
// a failed page fetch aborts the sync without advancing the sync marker.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}
	startedAt := s.clock.Now()

	since, err := s.store.LastSync(ctx)
	if err != nil {
		logrus.WithError(err).Warn("unreadable sync marker, doing a full sync")
		since = time.Time{}
	}
	result.Since = since

	log := logrus.WithField("since", since)
	log.Info("sync started")

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sessions, err := s.client.ListSessions(ctx, since, page, SyncPageSize)
		if err != nil {
			return result, wrapAPIError(fmt.Sprintf("fetching page %d", page), err)
		}
		if len(sessions) == 0 {
			break
		}
		result.SessionsFetched += len(sessions)

		for _, remote := range sessions {
			s.storeSession(ctx, remote, result)
			if progress != nil {
				select {
				case progress <- SyncProgress{
					Page:           page,
					Fetched:        result.SessionsFetched,
					Stored:         result.SessionsStored,
					CurrentSession: remote.Name,
				}:
				case <-ctx.Done():
					return result, ctx.Err()
				}
			}
		}

		if len(sessions) < SyncPageSize {
			break
		}
	}

	if err := s.store.SetLastSync(ctx, startedAt); err != nil {
		return result, fmt.Errorf("recording sync time: %w", err)
	}
	s.fillHistory(ctx, result)

	log.WithFields(logrus.Fields{
		"fetched": result.SessionsFetched,
		"stored":  result.SessionsStored,
		"skipped": result.SessionsSkipped,
		"total":   result.TotalSessions,
	}).Info("sync finished")

	return result, nil
}

// fillHistory records the size of the stored history; errors are logged, not returned
func (s *SyncService) fillHistory(ctx context.Context, result *SyncResult) {
	count, err := s.store.CountSessions(ctx)
	if err != nil {
		logrus.WithError(err).Warn("counting sessions")
		return
	}
	result.TotalSessions = count

	first, ok, err := s.store.EarliestExecutionDay(ctx)
	if err != nil {
		logrus.WithError(err).Warn("reading earliest session")
		return
	}
	if ok {
		result.HistoryStart = first
	}
}

// wrapAPIError adds op to err and flags rejected credentials with ErrUnauthorized
func wrapAPIError(op string, err error) error {
	if coachapi.IsUnauthorized(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *SyncService) storeSession(ctx context.Context, remote coachapi.Session, result *SyncResult) {
	session, source, err := s.convertSession(remote)
	if err != nil {
		result.SessionsSkipped++
		result.Errors = append(result.Errors, fmt.Errorf("session %s: %w", remote.ID, err))
		logrus.WithError(err).WithField("session_id", remote.ID).Warn("skipping session")
		return
	}

	if err := s.store.UpsertSession(ctx, session); err != nil {
		result.SessionsSkipped++
		result.Errors = append(result.Errors, err)
		return
	}

	result.SessionsStored++
	logrus.WithFields(logrus.Fields{
		"session_id":  session.ID,
		"day":         session.ExecutionDay.Format(analysis.DateLayout),
		"load":        session.TRIMP,
		"load_source": source,
	}).Debug("session stored")
}

// convertSession validates a remote session and resolves its load
func (s *SyncService) convertSession(remote coachapi.Session) (*store.Session, LoadSource, error) {
	if remote.ID == "" {
		return nil, "", errors.New("session has no id")
	}

	day, ok := analysis.LoadRecord{ExecutionDay: remote.ExecutionDay}.Day()
	if !ok {
		if remote.CompletedAt.IsZero() {
			return nil, "", ErrMissingDay
		}
		day = analysis.CivilDate(remote.CompletedAt)
	}

	if err := validateEffort(remote.DurationSeconds, remote.PerceivedExertion); err != nil {
		return nil, "", err
	}

	load, source := s.resolveLoad(remote)

	return &store.Session{
		ID:                remote.ID,
		Source:            store.SourceAPI,
		Name:              remote.Name,
		ActivityType:      remote.ActivityType,
		ExecutionDay:      day,
		Running:           remote.Running,
		DurationSeconds:   remote.DurationSeconds,
		PerceivedExertion: remote.PerceivedExertion,
		AverageHeartrate:  remote.AverageHeartrate,
		Distance:          remote.Distance,
		TRIMP:             load,
	}, source, nil
}

// resolveLoad prefers the server's load, then the athlete's rating, then heart rate
func (s *SyncService) resolveLoad(remote coachapi.Session) (float64, LoadSource) {
	if t := remote.TRIMP; t != nil && *t >= 0 && !math.IsNaN(*t) && !math.IsInf(*t, 0) {
		return *t, LoadFromAPI
	}
	if remote.PerceivedExertion != nil && remote.DurationSeconds > 0 {
		return analysis.SessionTRIMP(remote.DurationSeconds, remote.PerceivedExertion), LoadFromRating
	}
	if hr := remote.AverageHeartrate; hr != nil && *hr > 0 {
		return analysis.HeartRateTRIMP(remote.DurationSeconds, *hr, s.hrZones), LoadFromHeartRate
	}
	return 0, LoadNone
}

// RateLimitStatus returns the API budget left, when the client tracks one
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int, ok bool) {
	type limited interface {
		RateLimitStatus() (int, int)
	}
	if c, isLimited := s.client.(limited); isLimited {
		short, daily := c.RateLimitStatus()
		return short, daily, true
	}
	return 0, 0, false
}
