package models

import "time"

// Notice is an announcement published to one role group or to everyone.
type Notice struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
	TargetRole  string    `db:"target_role" json:"target_role"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
