package models

import "time"

// QueueToken is a numbered place in a clinic's queue.
type QueueToken struct {
	ID                string     `json:"id"`
	ClinicID          string     `json:"clinicId"`
	PatientID         string     `json:"patientId"`
	TokenNumber       int        `json:"tokenNumber"`
	Status            string     `json:"status"`
	EstimatedWaitTime *int       `json:"estimatedWaitTime"`
	CreatedAt         time.Time  `json:"createdAt"`
	CalledAt          *time.Time `json:"calledAt"`
	CompletedAt       *time.Time `json:"completedAt"`
}

const (
	TokenStatusWaiting   = "waiting"
	TokenStatusCalled    = "called"
	TokenStatusCompleted = "completed"
	TokenStatusCancelled = "cancelled"
)

// ValidTokenStatus reports whether status is a known queue token status.
func ValidTokenStatus(status string) bool {
	switch status {
	case TokenStatusWaiting, TokenStatusCalled, TokenStatusCompleted, TokenStatusCancelled:
		return true
	}
	return false
}

// NewQueueToken is the input for creating a token. The store assigns
// TokenNumber.
type NewQueueToken struct {
	ClinicID          string
	PatientID         string
	Status            string
	EstimatedWaitTime *int
}

type QueueTokenUpdate struct {
	Status      *string
	CalledAt    *time.Time
	CompletedAt *time.Time
}

func (u QueueTokenUpdate) Apply(t *QueueToken) {
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.CalledAt != nil {
		t.CalledAt = u.CalledAt
	}
	if u.CompletedAt != nil {
		t.CompletedAt = u.CompletedAt
	}
}
