package attempts

import "time"

// Log defines the interface for the attempt log.
type Log interface {
	// Record stores a scored attempt. Recording the same attempt id twice is
	// harmless; the first write wins.
	Record(a Attempt) error
	// ListForStudents returns all attempts by the given students inside
	// [from, to), oldest first.
	ListForStudents(studentIDs []string, from, to time.Time) ([]Attempt, error)
}
