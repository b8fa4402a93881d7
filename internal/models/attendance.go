package models

import "time"

// AttendanceStatus enumerates the recognized attendance states.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

// ValidAttendanceStatus reports whether raw names a known status.
func ValidAttendanceStatus(raw string) bool {
	switch AttendanceStatus(raw) {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// Attendance records one student's presence for a class on a date,
// optionally scoped to a subject period.
type Attendance struct {
	ID        int64            `db:"id" json:"id"`
	StudentID int64            `db:"student_id" json:"student_id"`
	ClassID   int64            `db:"class_id" json:"class_id"`
	SubjectID *int64           `db:"subject_id" json:"subject_id,omitempty"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedBy  int64            `db:"marked_by" json:"marked_by"`
	MarkedAt  time.Time        `db:"marked_at" json:"marked_at"`
}
