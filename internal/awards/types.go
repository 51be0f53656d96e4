package awards

import (
	"database/sql"
	"sync"
	"time"
)

// Type identifies a weekly superlative.
type Type string

const (
	MostImproved Type = "most_improved"
	SpeedDemon   Type = "speed_demon"
	AccuracyKing Type = "accuracy_king"
	Explorer     Type = "explorer"
)

// Qualification thresholds for the award rules.
const (
	speedDemonMinCount  = 5
	speedDemonFastMs    = 10000
	speedDemonFloorMs   = 3000
	accuracyMinAttempts = 5
	accuracyMinRatio    = 0.90
	explorerMinTopics   = 2
)

// Award is one weekly superlative granted to a league member. Value is a
// human-readable summary of what earned it.
type Award struct {
	ID        string    `json:"id,omitempty"`
	StudentID string    `json:"student_id"`
	WeekStart time.Time `json:"week_start"`
	Type      Type      `json:"award_type"`
	Value     string    `json:"value"`
}

// store persists awards.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
