package models

import "time"

// ClinicStaff links a user account to the clinic it works at.
type ClinicStaff struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ClinicID  string    `json:"clinicId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	StaffRoleReceptionist = "receptionist"
	StaffRoleNurse        = "nurse"
	StaffRoleDoctor       = "doctor"
	StaffRoleAdmin        = "admin"
)

func ValidStaffRole(role string) bool {
	switch role {
	case StaffRoleReceptionist, StaffRoleNurse, StaffRoleDoctor, StaffRoleAdmin:
		return true
	}
	return false
}

type NewClinicStaff struct {
	UserID    string  `json:"userId"`
	ClinicID  string  `json:"clinicId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      string  `json:"role"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	IsActive  *bool   `json:"isActive"`
}
