package store

import "time"

// Session sources
const (
	SourceAPI    = "api"
	SourceManual = "manual"
)

// Auth represents OAuth tokens for coaching API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Session is one completed training session and the load it contributed
type Session struct {
	ID                string    `db:"id"`
	Source            string    `db:"source"` // "api" or "manual"
	Name              string    `db:"name"`
	ActivityType      string    `db:"activity_type"`
	ExecutionDay      time.Time `db:"execution_day"` // calendar date, stored as YYYY-MM-DD
	Running           bool      `db:"running"`
	DurationSeconds   int       `db:"duration_seconds"`
	PerceivedExertion *int      `db:"perceived_exertion"` // 0-10, nullable
	AverageHeartrate  *float64  `db:"average_heartrate"`  // nullable
	Distance          *float64  `db:"distance"`           // meters, nullable
	TRIMP             float64   `db:"trimp"`
}
