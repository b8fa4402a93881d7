package models

import "time"

// Profile is the role-specific payload owned by a non-administrative user.
// Exactly one of Student, Teacher or Parent implements it per user; admin
// and principal accounts carry none.
type Profile interface {
	isProfile()
}

// Student is the profile row for users with the student role. Every
// student belongs to exactly one class.
type Student struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	DateOfBirth   time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender        string    `db:"gender" json:"gender"`
	Phone         string    `db:"phone" json:"phone"`
	Address       string    `db:"address" json:"address"`
	AdmissionDate time.Time `db:"admission_date" json:"admission_date"`
	ClassID       int64     `db:"class_id" json:"class_id"`
}

// Teacher is the profile row for users with the teacher role.
type Teacher struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	EmployeeID    string     `db:"employee_id" json:"employee_id"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	Phone         string     `db:"phone" json:"phone"`
	Address       string     `db:"address" json:"address"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	HireDate      time.Time  `db:"hire_date" json:"hire_date"`
	Qualification string     `db:"qualification" json:"qualification"`
}

// Parent is the profile row for users with the parent role.
type Parent struct {
	ID         int64  `db:"id" json:"id"`
	UserID     int64  `db:"user_id" json:"user_id"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	Phone      string `db:"phone" json:"phone"`
	Address    string `db:"address" json:"address"`
	Occupation string `db:"occupation" json:"occupation"`
}

// StudentParent links a student to a parent with a relationship label
// (father, mother, guardian).
type StudentParent struct {
	ID           int64  `db:"id" json:"id"`
	StudentID    int64  `db:"student_id" json:"student_id"`
	ParentID     int64  `db:"parent_id" json:"parent_id"`
	Relationship string `db:"relationship" json:"relationship"`
}

func (*Student) isProfile() {}
func (*Teacher) isProfile() {}
func (*Parent) isProfile()  {}
