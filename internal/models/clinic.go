package models

import "time"

// Clinic is a healthcare facility listed in the directory.
type Clinic struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Area            string    `json:"area"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Latitude        string    `json:"latitude"`
	Longitude       string    `json:"longitude"`
	CurrentWaitTime int       `json:"currentWaitTime"`
	QueueSize       int       `json:"queueSize"`
	Status          string    `json:"status"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

const (
	ClinicStatusOpen   = "open"
	ClinicStatusBusy   = "busy"
	ClinicStatusClosed = "closed"
)

// ValidClinicStatus reports whether status is one of open, busy or closed.
func ValidClinicStatus(status string) bool {
	switch status {
	case ClinicStatusOpen, ClinicStatusBusy, ClinicStatusClosed:
		return true
	}
	return false
}

// NewClinic carries the caller supplied fields of a clinic.
type NewClinic struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Area      string `json:"area"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// ClinicUpdate is a partial update; nil fields are left untouched.
type ClinicUpdate struct {
	CurrentWaitTime *int    `json:"currentWaitTime"`
	QueueSize       *int    `json:"queueSize"`
	Status          *string `json:"status"`
	IsActive        *bool   `json:"isActive"`
}

// Apply copies the non-nil fields of u onto c.
func (u ClinicUpdate) Apply(c *Clinic) {
	if u.CurrentWaitTime != nil {
		c.CurrentWaitTime = *u.CurrentWaitTime
	}
	if u.QueueSize != nil {
		c.QueueSize = *u.QueueSize
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}

// ClinicQuery filters the clinic directory. Empty fields match everything.
type ClinicQuery struct {
	Search string
	Area   string
}
