package coachapi

import "time"

// Session is a completed training session as returned by the coaching API
type Session struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ActivityType      string    `json:"activityType"`
	ExecutionDay      string    `json:"executionDay"` // ISO date
	CompletedAt       time.Time `json:"completedAt"`
	Running           bool      `json:"running"`
	DurationSeconds   int       `json:"durationSeconds"`
	PerceivedExertion *int      `json:"perceivedExertion"` // 0-10, nil when not rated
	AverageHeartrate  *float64  `json:"averageHeartrate"`  // bpm
	Distance          *float64  `json:"distance"`          // meters
	TRIMP             *float64  `json:"trimp"`             // load computed server-side, if any
}

// Athlete is the minimal athlete info carried in the token response
type Athlete struct {
	ID int64 `json:"id"`
}
