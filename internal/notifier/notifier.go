package notifier

import (
	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/clock"
)

// Notifier defines a high-level interface for sending notifications about league events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// Sent once after the weekly rollover job finishes.
	SendRolloverDigest(digest *RolloverDigest, dryRun bool) error
}

// RolloverDigest summarizes a completed weekly rollover for the announcement channel.
type RolloverDigest struct {
	Week      clock.Week
	Processed int
	Failed    int
	Promoted  int
	Demoted   int
	Awards    []awards.Award
	// Names maps student IDs appearing in Awards to display names.
	Names map[string]string
}
