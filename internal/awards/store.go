package awards

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/kvistberg/studyleague/internal/clock"
)

// Store persists weekly awards.
type Store interface {
	// SaveAll inserts the given awards, silently skipping any that already
	// exist for the same (student, week, type). Returns how many were new.
	SaveAll(list []Award) (int, error)
	// ForStudent returns a student's awards for one week.
	ForStudent(studentID string, week clock.Week) ([]Award, error)
}

// NewStore creates a new awards Store.
func NewStore(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

func (s *store) SaveAll(list []Award) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin award transaction: %w", err)
	}

	inserted := 0
	for _, a := range list {
		res, err := tx.Exec(`
			INSERT INTO weekly_awards (id, student_id, week_start, award_type, value)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(student_id, week_start, award_type) DO NOTHING
		`, uuid.New().String(), a.StudentID, a.WeekStart.Unix(), string(a.Type), a.Value)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert award %s for %s: %w", a.Type, a.StudentID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit award transaction: %w", err)
	}
	if inserted > 0 {
		log.Info("Granted weekly awards", "count", inserted)
	}
	return inserted, nil
}

func (s *store) ForStudent(studentID string, week clock.Week) ([]Award, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, student_id, week_start, award_type, value
		FROM weekly_awards
		WHERE student_id = ? AND week_start = ?
		ORDER BY award_type
	`, studentID, week.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to query awards: %w", err)
	}
	defer rows.Close()

	var list []Award
	for rows.Next() {
		var (
			a         Award
			weekStart int64
			awardType string
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &weekStart, &awardType, &a.Value); err != nil {
			log.Error("Failed to scan award row", "error", err)
			continue
		}
		a.WeekStart = time.Unix(weekStart, 0).In(clock.LeagueZone)
		a.Type = Type(awardType)
		list = append(list, a)
	}
	return list, rows.Err()
}
