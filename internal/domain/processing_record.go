package domain

import "time"

type ProcessingStatus string

const (
	ProcessingStatusInProgress ProcessingStatus = "in_progress"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// ProcessingRecord is the durable marker that a given event ID has been
// admitted for processing. At most one record exists per event ID;
// in_progress is the only non-terminal status and a record never regresses
// from completed or failed.
type ProcessingRecord struct {
	EventID         string
	Status          ProcessingStatus
	ExternalOrderID *string
	StartedAt       time.Time
	FinishedAt      *time.Time
	NotifiedAt      *time.Time
}

func (s ProcessingStatus) Terminal() bool {
	return s == ProcessingStatusCompleted || s == ProcessingStatusFailed
}
