package model

import "time"

// DateLayout is the text form of attendance dates.
const DateLayout = "2006-01-02"

// AttendanceRecord marks a student present on a calendar date.
// At most one record exists per (StudentID, Date).
type AttendanceRecord struct {
	ID        int64  `json:"id"`
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
}

// AttendanceEntry is an attendance record joined with its student.
type AttendanceEntry struct {
	AttendanceRecord
	Name   string `json:"name"`
	Stream string `json:"stream"`
}

// FormatDate returns the attendance date of t in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
