// Package attendance records daily presence.
package attendance

import (
	"context"
	"fmt"
	"time"

	"attendance/internal/dto"
	"attendance/internal/logger"
	"attendance/internal/model"
	"attendance/internal/repository"
)

// Recorder writes at most one attendance record per student per day.
type Recorder struct {
	repo   repository.AttendanceRepository
	logger *logger.Logger
}

func NewRecorder(repo repository.AttendanceRepository, logger *logger.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record marks the student present on the calendar date of day, in day's
// location. It reports whether a new record was created.
func (r *Recorder) Record(ctx context.Context, studentID int64, day time.Time) (bool, error) {
	date := model.FormatDate(day)

	created, err := r.repo.MarkPresent(ctx, studentID, date)
	if err != nil {
		return false, fmt.Errorf("failed to record attendance for student %d on %s: %w", studentID, date, err)
	}

	if created {
		r.logger.Info("Student %d marked present on %s", studentID, date)
	}
	return created, nil
}

// Day returns everyone recorded present on date (YYYY-MM-DD).
func (r *Recorder) Day(ctx context.Context, date string) (*dto.AttendanceDay, error) {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	entries, err := r.repo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.AttendanceEntry{}
	}

	return &dto.AttendanceDay{Date: date, Count: len(entries), Entries: entries}, nil
}
