package models

import "time"

// ContactRequest is a message left by a clinic interested in joining.
type ContactRequest struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone"`
	Message    *string   `json:"message"`
	ClinicName *string   `json:"clinicName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NewContactRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`
	Message    *string `json:"message"`
	ClinicName *string `json:"clinicName"`
}
