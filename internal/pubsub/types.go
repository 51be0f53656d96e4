package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventAttemptScored carries a scored attempt from the learning backend
	// into the XP pipeline.
	EventAttemptScored EventType = "attempt-scored"
	// EventWeekRolledOver announces a completed weekly rollover.
	EventWeekRolledOver EventType = "week-rolled-over"
)
