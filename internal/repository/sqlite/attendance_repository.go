package sqlite

import (
	"context"
	"fmt"

	"attendance/internal/model"
)

// AttendanceRepository implements repository.AttendanceRepository for SQLite.
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository creates a new SQLite attendance repository.
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// MarkPresent relies on the unique (student_id, date) index, so concurrent
// callers can never produce two rows for the same day.
func (r *AttendanceRepository) MarkPresent(ctx context.Context, studentID int64, date string) (bool, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT OR IGNORE INTO attendance (student_id, date)
		VALUES (?, ?)
	`, studentID, date)
	if err != nil {
		return false, fmt.Errorf("failed to insert attendance: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n == 1, nil
}

// GetByDate returns the day's records joined with student details.
func (r *AttendanceRepository) GetByDate(ctx context.Context, date string) ([]model.AttendanceEntry, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT a.id, a.student_id, a.date, s.name, s.stream
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE a.date = ?
		ORDER BY a.id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var entries []model.AttendanceEntry
	for rows.Next() {
		var e model.AttendanceEntry
		if err := rows.Scan(&e.ID, &e.StudentID, &e.Date, &e.Name, &e.Stream); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetByStudent returns all records of one student, oldest first.
func (r *AttendanceRepository) GetByStudent(ctx context.Context, studentID int64) ([]model.AttendanceRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, student_id, date FROM attendance WHERE student_id = ? ORDER BY date, id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var rec model.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Date); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
