package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jask/pacfrag/internal/config"
	"github.com/jask/pacfrag/internal/database"
	"github.com/jask/pacfrag/internal/database/repository"
	"github.com/jask/pacfrag/internal/fetch"
	"github.com/jask/pacfrag/internal/logger"
	"github.com/jask/pacfrag/internal/service"
)

// app carries what every command shares once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logJSON    bool

	cfg config.Config
	log logger.Logger
	fs  afero.Fs
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if cmd.Flags().Changed("log-level") {
		level = a.logLevel
	}
	jsonOut := cfg.Log.JSON
	if cmd.Flags().Changed("log-json") {
		jsonOut = a.logJSON
	}
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(level)
	lc.JSON = jsonOut
	a.log = logger.NewLogger(lc)
	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), a.log))
	return nil
}

// store is an open snapshot cache.
type store struct {
	db        *sql.DB
	snapshots *repository.SnapshotRepo
	runs      *repository.RunRepo
}

func (a *app) openStore() (*store, error) {
	path := a.cfg.Cache.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir cache dir: %w", err)
	}
	if err := database.RunMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &store{
		db:        db,
		snapshots: repository.NewSnapshotRepo(db),
		runs:      repository.NewRunRepo(db),
	}, nil
}

func (s *store) Close() error { return s.db.Close() }

func (a *app) fetcher() *fetch.Client {
	return fetch.New(fetch.Options{
		Endpoint:    a.cfg.API.Endpoint,
		Method:      a.cfg.API.Method,
		APIKey:      a.cfg.APIKey(),
		PageSize:    a.cfg.API.PageSize,
		Concurrency: a.cfg.API.Concurrency,
		Timeout:     a.cfg.API.Timeout,
		Retry: fetch.RetryPolicy{
			MaxAttempts:   a.cfg.Retry.MaxAttempts,
			BaseDelay:     a.cfg.Retry.BaseDelay,
			BackoffFactor: a.cfg.Retry.BackoffFactor,
		},
	}, a.log)
}

func (a *app) ingest(st *store) *service.IngestService {
	return &service.IngestService{
		Snapshots: st.snapshots,
		Fetcher:   a.fetcher(),
		Source:    a.cfg.API.Endpoint + a.cfg.API.Method,
	}
}

func (a *app) analyzer(st *store) *service.AnalyzeService {
	return &service.AnalyzeService{
		Ingest:   a.ingest(st),
		Runs:     st.runs,
		FS:       a.fs,
		LockPath: a.cfg.Cache.Path + ".lock",
	}
}
