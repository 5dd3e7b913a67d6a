package app

import (
	"context"
	"fmt"

	"attendance/internal/config"
	"attendance/internal/repository"
	"attendance/internal/repository/postgres"
	"attendance/internal/repository/sqlite"
)

// Store bundles the repositories of the configured database driver.
type Store struct {
	Students   repository.StudentRepository
	Attendance repository.AttendanceRepository
	close      func() error
}

// OpenStore connects to the configured database and applies its schema.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Students:   sqlite.NewStudentRepository(db),
			Attendance: sqlite.NewAttendanceRepository(db),
			close:      db.Close,
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &Store{
			Students:   postgres.NewStudentRepository(pool),
			Attendance: postgres.NewAttendanceRepository(pool),
			close:      pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

func (s *Store) Close() error {
	return s.close()
}
