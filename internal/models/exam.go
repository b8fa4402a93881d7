package models

import "time"

// Exam is a scheduled examination for a class and subject.
type Exam struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	ExamType        string    `db:"exam_type" json:"exam_type"`
	SubjectID       int64     `db:"subject_id" json:"subject_id"`
	ClassID         int64     `db:"class_id" json:"class_id"`
	ExamDate        time.Time `db:"exam_date" json:"exam_date"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	MaxMarks        int       `db:"max_marks" json:"max_marks"`
	CreatedBy       int64     `db:"created_by" json:"created_by"`
}

// ExamResult records one student's marks for an exam.
type ExamResult struct {
	ID            int64  `db:"id" json:"id"`
	ExamID        int64  `db:"exam_id" json:"exam_id"`
	StudentID     int64  `db:"student_id" json:"student_id"`
	MarksObtained int    `db:"marks_obtained" json:"marks_obtained"`
	Grade         string `db:"grade" json:"grade"`
	Remarks       string `db:"remarks" json:"remarks"`
}

// ExamResultRow joins a result with its student identity for listings
// and exports.
type ExamResultRow struct {
	ExamResult
	StudentCode string `db:"student_code" json:"student_code"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
}
