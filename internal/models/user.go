package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RolePrincipal UserRole = "principal"
	RoleTeacher   UserRole = "teacher"
	RoleStudent   UserRole = "student"
	RoleParent    UserRole = "parent"
)

// ParseRole validates a raw role string against the recognized role set.
func ParseRole(raw string) (UserRole, bool) {
	switch UserRole(raw) {
	case RoleAdmin, RolePrincipal, RoleTeacher, RoleStudent, RoleParent:
		return UserRole(raw), true
	}
	return "", false
}

// Administrative reports whether the role manages the school rather than
// owning a profile row.
func (r UserRole) Administrative() bool {
	return r == RoleAdmin || r == RolePrincipal
}

// User represents an application user stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Active       bool      `db:"active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role    *UserRole
	Page    int
	PerPage int
}

// Normalize clamps paging parameters to sane bounds.
func (f *UserFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// NewPagination computes page counts for a result set.
func NewPagination(page, perPage, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return &Pagination{Page: page, PerPage: perPage, Total: total, Pages: pages}
}
