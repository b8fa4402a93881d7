package models

import "time"

// AcademicYear is a reference entity, e.g. "2024-2025".
type AcademicYear struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
}

// Class groups students within an academic year, e.g. "Grade 5" section
// "A", optionally with a designated class teacher.
type Class struct {
	ID             int64  `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	Section        string `db:"section" json:"section"`
	AcademicYearID int64  `db:"academic_year_id" json:"academic_year_id"`
	ClassTeacherID *int64 `db:"class_teacher_id" json:"class_teacher_id,omitempty"`
}

// Subject is a taught discipline with a unique code.
type Subject struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
}

// TeacherSubject assigns a teacher to teach a subject for a class.
type TeacherSubject struct {
	ID        int64 `db:"id" json:"id"`
	TeacherID int64 `db:"teacher_id" json:"teacher_id"`
	SubjectID int64 `db:"subject_id" json:"subject_id"`
	ClassID   int64 `db:"class_id" json:"class_id"`
}
