package dto

import "attendance/internal/model"

// AttendanceDay is the response payload of the attendance API.
type AttendanceDay struct {
	Date    string                  `json:"date"`
	Count   int                     `json:"count"`
	Entries []model.AttendanceEntry `json:"entries"`
}
