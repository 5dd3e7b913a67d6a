package dto

import (
	"encoding/json"
	"time"
)

// AttendanceEvent is pushed to live viewers when a student is marked present.
type AttendanceEvent struct {
	StudentID int64     `json:"studentId"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Time      time.Time `json:"time"`
	Session   string    `json:"session"`
}

// MarshalJSON formats the time of day as HH:MM:SS.
func (e AttendanceEvent) MarshalJSON() ([]byte, error) {
	type Alias AttendanceEvent
	return json.Marshal(&struct {
		Time string `json:"time"`
		Alias
	}{
		Time:  e.Time.Format("15:04:05"),
		Alias: (Alias)(e),
	})
}
