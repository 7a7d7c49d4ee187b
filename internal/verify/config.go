// Package verify replays known score and eligibility cases against a running
// server and reports every answer that disagrees with the local engine.
package verify

import (
	"errors"
	"time"

	"github.com/okian/dormscore/internal/domain/scoring"
)

// Defaults applied by Config.normalize.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultWorkers = 4
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrUnhealthy is returned when the health check does not answer 200.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrUnexpectedStatus is returned for non-200 scenario responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMismatch marks a scenario whose answer differs from the expected one.
	ErrMismatch = errors.New("mismatch")
)

// Config holds configuration for a verification run.
type Config struct {
	BaseURL string          // Base URL of the service
	Workers int             // Number of concurrent scenarios
	Timeout time.Duration   // HTTP request timeout
	Verbose bool            // Log every passing scenario
	Engine  *scoring.Engine // Computes expected scores; nil uses the bundled tables
}

func (c *Config) normalize() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Engine == nil {
		c.Engine = scoring.Default()
	}
}

// Mismatch is one failed scenario.
type Mismatch struct {
	Scenario string `json:"scenario"`
	Detail   string `json:"detail"`
}

// Report holds run statistics.
type Report struct {
	Total      int           `json:"total"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Mismatches []Mismatch    `json:"mismatches"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration_ns"`
}

// OK reports whether every scenario passed.
func (r *Report) OK() bool { return r.Failed == 0 }
