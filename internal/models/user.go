package models

// User is an account that can sign in. Password holds the bcrypt hash.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

const (
	UserTypePatient = "patient"
	UserTypeStaff   = "staff"
)
