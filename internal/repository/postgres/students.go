package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"attendance/internal/model"
)

// StudentRepository implements repository.StudentRepository for PostgreSQL.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new PostgreSQL student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) Insert(ctx context.Context, s *model.Student) (int64, error) {
	err := r.pool.db.QueryRowContext(ctx, `
		INSERT INTO students (name, stream, image_path)
		VALUES ($1, $2, $3)
		RETURNING id
	`, s.Name, s.Stream, s.ImagePath).Scan(&s.ID)
	if err != nil {
		return 0, fmt.Errorf("insert student: %w", err)
	}
	return s.ID, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return scanStudent(r.pool.db.QueryRowContext(ctx,
		`SELECT id, name, stream, image_path FROM students WHERE id = $1`, id))
}

func (r *StudentRepository) GetByName(ctx context.Context, name string) (*model.Student, error) {
	return scanStudent(r.pool.db.QueryRowContext(ctx,
		`SELECT id, name, stream, image_path FROM students WHERE name = $1 ORDER BY id LIMIT 1`, name))
}

func scanStudent(row *sql.Row) (*model.Student, error) {
	var s model.Student
	if err := row.Scan(&s.ID, &s.Name, &s.Stream, &s.ImagePath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query student: %w", err)
	}
	return &s, nil
}

func (r *StudentRepository) GetAll(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT id, name, stream, image_path FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Stream, &s.ImagePath); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// Delete removes attendance rows explicitly so the cascade does not depend on
// the foreign key definition of tables created elsewhere.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE student_id = $1`, id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return tx.Commit()
}
