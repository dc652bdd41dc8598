package status

import (
	"time"

	"ddogreen/internal/activity"
)

// Document is the persisted and served controller status
type Document struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version,omitempty"`
	PID         int       `json:"pid"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ConfigPath  string    `json:"config_path,omitempty"`
	Backend     string    `json:"backend"`
	PowerMode   string    `json:"power_mode"`
	PowerReady  bool      `json:"power_available"`
	RateLimited uint64    `json:"rate_limited"`

	Running            bool      `json:"running"`
	Active             bool      `json:"active"`
	Load               float64   `json:"load"`
	NormalizedLoad     float64   `json:"normalized_load"`
	CoreCount          int       `json:"core_count"`
	HighThreshold      float64   `json:"high_performance_threshold"`
	PowerSaveThreshold float64   `json:"power_save_threshold"`
	IntervalSeconds    float64   `json:"interval_s"`
	LastSample         time.Time `json:"last_sample,omitzero"`
	LastChange         time.Time `json:"last_change,omitzero"`
	Samples            uint64    `json:"samples"`
	Transitions        uint64    `json:"transitions"`
	Suppressed         uint64    `json:"suppressed"`
}

// ApplySnapshot copies monitor state into the document
func (d *Document) ApplySnapshot(s activity.Snapshot) {
	d.Running = s.Running
	d.Active = s.Active
	d.Load = s.Load
	d.NormalizedLoad = s.NormalizedLoad
	d.CoreCount = s.CoreCount
	d.HighThreshold = s.HighThreshold
	d.PowerSaveThreshold = s.LowThreshold
	d.IntervalSeconds = s.Interval.Seconds()
	d.LastSample = s.LastSample
	d.LastChange = s.LastChange
	d.Samples = s.Samples
	d.Transitions = s.Transitions
	d.Suppressed = s.Suppressed
}

// State returns "performance" or "powersaving" for the decided activity state
func (d Document) State() string {
	if d.Active {
		return "performance"
	}
	return "powersaving"
}
