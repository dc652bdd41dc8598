package metrics

import (
	"time"
)

// Transition is one line of the transition history, written for every reported state change
type Transition struct {
	Timestamp      time.Time `json:"ts"`
	RunID          string    `json:"run_id,omitempty"`
	Active         bool      `json:"active"`
	Initial        bool      `json:"initial,omitempty"`
	Load           float64   `json:"load"`
	NormalizedLoad float64   `json:"normalized_load"`
	// Mode is the requested power mode; Applied reports whether the backend accepted it
	Mode        string `json:"mode"`
	Applied     bool   `json:"applied"`
	RateLimited bool   `json:"rate_limited,omitempty"`
}
