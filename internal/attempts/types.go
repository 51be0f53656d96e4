package attempts

import (
	"database/sql"
	"sync"
	"time"
)

// store handles database operations for the attempt log.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Attempt is one scored answer from the learning flow. The league subsystem
// only ever reads these; the record itself is the source of truth that makes
// XP crediting safely retryable.
type Attempt struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	TopicID     string    `json:"topic_id"`
	IsCorrect   bool      `json:"is_correct"`
	IsBonus     bool      `json:"is_bonus"`
	TimeTakenMs int64     `json:"time_taken_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
