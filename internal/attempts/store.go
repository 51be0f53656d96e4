package attempts

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new attempt Log.
func New(db *sql.DB) Log {
	return &store{
		db: db,
	}
}

func (s *store) Record(a Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO attempts (id, student_id, topic_id, is_correct, is_bonus, time_taken_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, a.ID, a.StudentID, a.TopicID, a.IsCorrect, a.IsBonus, a.TimeTakenMs, a.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

func (s *store) ListForStudents(studentIDs []string, from, to time.Time) ([]Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(studentIDs) == 0 {
		return []Attempt{}, nil
	}

	placeholders := strings.Repeat("?,", len(studentIDs)-1) + "?"
	query := fmt.Sprintf(`
		SELECT id, student_id, topic_id, is_correct, is_bonus, time_taken_ms, created_at
		FROM attempts
		WHERE student_id IN (%s) AND created_at >= ? AND created_at < ?
		ORDER BY created_at ASC, id ASC
	`, placeholders)

	args := make([]any, 0, len(studentIDs)+2)
	for _, id := range studentIDs {
		args = append(args, id)
	}
	args = append(args, from.Unix(), to.Unix())

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var result []Attempt
	for rows.Next() {
		var (
			a         Attempt
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &a.TopicID, &a.IsCorrect, &a.IsBonus, &a.TimeTakenMs, &createdAt); err != nil {
			log.Error("Failed to scan attempt row", "error", err)
			continue
		}
		a.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, a)
	}
	return result, rows.Err()
}
