package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"attendance/internal/model"
)

// StudentRepository implements repository.StudentRepository for SQLite.
type StudentRepository struct {
	db *DB
}

// NewStudentRepository creates a new SQLite student repository.
func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Insert adds a new student and returns its id.
func (r *StudentRepository) Insert(ctx context.Context, s *model.Student) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO students (name, stream, image_path)
		VALUES (?, ?, ?)
	`, s.Name, s.Stream, s.ImagePath)
	if err != nil {
		return 0, fmt.Errorf("failed to insert student: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.ID = id
	return id, nil
}

// GetByID retrieves a student by id. It returns nil when none exists.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.scanOne(r.db.Conn().QueryRowContext(ctx, `
		SELECT id, name, stream, image_path FROM students WHERE id = ?
	`, id))
}

// GetByName retrieves the first student with the given display name.
func (r *StudentRepository) GetByName(ctx context.Context, name string) (*model.Student, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	return r.scanOne(r.db.Conn().QueryRowContext(ctx, `
		SELECT id, name, stream, image_path FROM students WHERE name = ? ORDER BY id LIMIT 1
	`, name))
}

func (r *StudentRepository) scanOne(row *sql.Row) (*model.Student, error) {
	var s model.Student
	if err := row.Scan(&s.ID, &s.Name, &s.Stream, &s.ImagePath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query student: %w", err)
	}
	return &s, nil
}

// GetAll returns every student in id order.
func (r *StudentRepository) GetAll(ctx context.Context) ([]model.Student, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().QueryContext(ctx, `SELECT id, name, stream, image_path FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Stream, &s.ImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// Delete removes the student and its attendance records in one transaction.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE student_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	return tx.Commit()
}
