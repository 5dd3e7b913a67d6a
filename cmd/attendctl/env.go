package main

import (
	"context"

	"attendance/internal/app"
	"attendance/internal/config"
	"attendance/internal/logger"
	"attendance/internal/service/attendance"
	"attendance/internal/service/enrollment"
	"attendance/internal/service/storage"
)

// cliEnv holds the services a command works with.
type cliEnv struct {
	config     *config.Config
	store      *app.Store
	enrollment *enrollment.Service
	recorder   *attendance.Recorder
}

func openEnv(ctx context.Context) (*cliEnv, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dataset, err := storage.NewDataset(cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &cliEnv{
		config:     cfg,
		store:      store,
		enrollment: enrollment.NewService(store.Students, dataset, log),
		recorder:   attendance.NewRecorder(store.Attendance, log),
	}, nil
}

func (e *cliEnv) Close() {
	e.store.Close()
}
