package repository

import (
	"context"

	"attendance/internal/model"
)

// StudentRepository defines the interface for student data operations.
type StudentRepository interface {
	// Create operations
	Insert(ctx context.Context, s *model.Student) (int64, error)

	// Read operations
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	GetByName(ctx context.Context, name string) (*model.Student, error)
	GetAll(ctx context.Context) ([]model.Student, error)

	// Delete removes the student together with its attendance records.
	Delete(ctx context.Context, id int64) error
}

// AttendanceRepository defines the interface for attendance data operations.
type AttendanceRepository interface {
	// MarkPresent inserts a (student, date) record unless one already exists.
	// It reports whether a new record was written.
	MarkPresent(ctx context.Context, studentID int64, date string) (bool, error)

	// Read operations
	GetByDate(ctx context.Context, date string) ([]model.AttendanceEntry, error)
	GetByStudent(ctx context.Context, studentID int64) ([]model.AttendanceRecord, error)
}
