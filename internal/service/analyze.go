package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/jask/pacfrag/internal/database/repository"
	"github.com/jask/pacfrag/internal/logger"
	"github.com/jask/pacfrag/internal/overlap"
	"github.com/jask/pacfrag/internal/report"
)

// ErrLocked is returned when another run holds the cache lock.
var ErrLocked = errors.New("another run is in progress")

// AnalyzeService runs the whole pipeline: load committees, analyze, publish.
type AnalyzeService struct {
	Ingest   *IngestService
	Runs     *repository.RunRepo
	FS       afero.Fs
	LockPath string
}

type RunOptions struct {
	Day       string
	Refresh   bool
	Input     string // analyze this JSON file instead of a snapshot
	OutputDir string
}

type RunResult struct {
	RunID  string
	Source string
	Paths  report.Paths
	Report *overlap.Report
}

// Run loads the committee list, analyzes it and publishes the artifacts for
// opts.Day. Nothing is published when any step fails.
func (s *AnalyzeService) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	log := logger.FromContext(ctx).With("day", opts.Day)

	unlock, err := s.lock()
	if err != nil {
		return RunResult{}, err
	}
	defer unlock()

	var (
		entities   []overlap.Entity
		snapshotID *string
		source     string
	)
	if opts.Input != "" {
		entities, err = report.ReadEntities(s.FS, opts.Input)
		if err != nil {
			return RunResult{}, fmt.Errorf("read input: %w", err)
		}
		source = "file:" + opts.Input
	} else {
		snap, list, err := s.Ingest.Snapshot(ctx, opts.Day, opts.Refresh)
		if err != nil {
			return RunResult{}, err
		}
		entities, snapshotID, source = list, &snap.ID, snap.Source
	}

	rep, err := overlap.Analyze(entities)
	if err != nil {
		return RunResult{}, fmt.Errorf("analyze: %w", err)
	}
	for _, name := range rep.Duplicates {
		log.Warn("committee name appears on more than one record; totals conflate", "name", name)
	}
	log.Info("analysis complete",
		"committees", rep.Stats.Entities,
		"fragments", rep.Stats.Fragments,
		"lengths", rep.Stats.Lengths,
		"referenced", rep.Stats.Committees,
		"receipts", rep.Stats.TotalReceipts.StringFixed(2))

	paths, err := report.NewWriter(s.FS, opts.OutputDir).Publish(opts.Day, entities, rep)
	if err != nil {
		return RunResult{}, err
	}
	log.Info("report published", "ngrams", paths.Ngrams, "receipts", paths.Receipts)

	run := repository.Run{
		SnapshotID:     snapshotID,
		Source:         source,
		EntityCount:    rep.Stats.Entities,
		FragmentCount:  rep.Stats.Fragments,
		CommitteeCount: rep.Stats.Committees,
		OutputDir:      opts.OutputDir,
	}
	if s.Runs != nil {
		if err := s.Runs.Insert(ctx, &run); err != nil {
			log.Warn("could not record run", "err", err)
		}
	}
	return RunResult{RunID: run.ID, Source: source, Paths: paths, Report: rep}, nil
}

func (s *AnalyzeService) lock() (func(), error) {
	if s.LockPath == "" {
		return func() {}, nil
	}
	fl := flock.New(s.LockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.LockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, s.LockPath)
	}
	return func() { _ = fl.Unlock() }, nil
}
