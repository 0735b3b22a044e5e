package models

import "time"

// ValidationRecord is one validation snapshot persisted by the HTTP
// layer for the history endpoint. The analyzer core never writes or
// reads these.
type ValidationRecord struct {
	ID              string
	Track           string
	UserSkillCount  int
	GapCount        int
	CoveragePercent float64
	SortStrategy    string
	LatencyMS       int
	CreatedAt       time.Time
}

// GapRecord is one gap row attached to a validation snapshot, kept so
// the history view can show what was missing at the time.
type GapRecord struct {
	ID             int
	ValidationID   string
	Skill          string
	Weight         int
	CombinedScore  float64
	DemandCategory string
}
