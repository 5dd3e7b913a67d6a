package postgres

import (
	"context"
	"fmt"

	"attendance/internal/model"
)

// AttendanceRepository implements repository.AttendanceRepository for PostgreSQL.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func (r *AttendanceRepository) MarkPresent(ctx context.Context, studentID int64, date string) (bool, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO attendance (student_id, date) VALUES ($1, $2)
		ON CONFLICT (student_id, date) DO NOTHING
	`, studentID, date)
	if err != nil {
		return false, fmt.Errorf("insert attendance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("affected rows: %w", err)
	}
	return n == 1, nil
}

func (r *AttendanceRepository) GetByDate(ctx context.Context, date string) ([]model.AttendanceEntry, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT a.id, a.student_id, a.date, s.name, s.stream
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE a.date = $1
		ORDER BY a.id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var entries []model.AttendanceEntry
	for rows.Next() {
		var e model.AttendanceEntry
		if err := rows.Scan(&e.ID, &e.StudentID, &e.Date, &e.Name, &e.Stream); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return entries, nil
}

func (r *AttendanceRepository) GetByStudent(ctx context.Context, studentID int64) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, student_id, date FROM attendance WHERE student_id = $1 ORDER BY date, id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var rec model.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Date); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return records, nil
}
