package models

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RegisterRequest creates an account plus its role profile in one call.
type RegisterRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=6"`
	Role      string          `json:"role" validate:"required"`
	Profile   *ProfilePayload `json:"profile"`
	IP        string          `json:"-"`
	UserAgent string          `json:"-"`
}

// ProfilePayload carries the optional role-specific fields supplied at
// registration. Dates use the YYYY-MM-DD format; absent values fall back
// to documented defaults.
type ProfilePayload struct {
	StudentID     string `json:"student_id"`
	EmployeeID    string `json:"employee_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth"`
	Gender        string `json:"gender"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	AdmissionDate string `json:"admission_date"`
	HireDate      string `json:"hire_date"`
	Qualification string `json:"qualification"`
	Occupation    string `json:"occupation"`
	ClassID       int64  `json:"class_id"`
}

// ChangePasswordRequest payload for updating the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// AuthenticatedUser pairs a user with its role profile in auth responses.
type AuthenticatedUser struct {
	User    *User   `json:"user"`
	Profile Profile `json:"profile"`
}
