package models

import "time"

// Assignment is coursework issued by a teacher to a class for a subject.
type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	TeacherID   int64     `db:"teacher_id" json:"teacher_id"`
	SubjectID   int64     `db:"subject_id" json:"subject_id"`
	ClassID     int64     `db:"class_id" json:"class_id"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	MaxMarks    int       `db:"max_marks" json:"max_marks"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AssignmentSubmission is a student's answer to an assignment, graded
// later by a teacher.
type AssignmentSubmission struct {
	ID             int64      `db:"id" json:"id"`
	AssignmentID   int64      `db:"assignment_id" json:"assignment_id"`
	StudentID      int64      `db:"student_id" json:"student_id"`
	SubmissionText string     `db:"submission_text" json:"submission_text"`
	SubmittedAt    time.Time  `db:"submitted_at" json:"submitted_at"`
	MarksObtained  *int       `db:"marks_obtained" json:"marks_obtained,omitempty"`
	Feedback       string     `db:"feedback" json:"feedback"`
	GradedBy       *int64     `db:"graded_by" json:"graded_by,omitempty"`
	GradedAt       *time.Time `db:"graded_at" json:"graded_at,omitempty"`
}
