package importer

import "time"

// Stats summarises one import run.
type Stats struct {
	Total     int       `json:"total"`
	Accepted  int       `json:"accepted"`
	Rejected  int       `json:"rejected"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Progress is the share of rows processed, in percent.
func (s Stats) Progress() float64 {
	if s.Total == 0 {
		return 100
	}
	return float64(s.Accepted+s.Rejected) / float64(s.Total) * 100
}

// Duration is how long the run took, or zero while it is still running.
func (s Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}
