package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jask/pacfrag/internal/database"
	"github.com/jask/pacfrag/internal/database/repository"
	"github.com/jask/pacfrag/internal/logger"
	"github.com/jask/pacfrag/internal/overlap"
)

// Fetcher retrieves the full committee list in API order.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]overlap.Entity, error)
}

// IngestService keeps one cached snapshot per day, fetching when needed.
type IngestService struct {
	Snapshots *repository.SnapshotRepo
	Fetcher   Fetcher
	Source    string
}

// Snapshot returns the newest cached snapshot for day. With refresh set, or
// when the day has none, it fetches from the API and caches the result.
func (s *IngestService) Snapshot(ctx context.Context, day string, refresh bool) (repository.Snapshot, []overlap.Entity, error) {
	log := logger.FromContext(ctx).With("day", day)

	if !refresh {
		snap, err := s.Snapshots.Latest(ctx, day)
		switch {
		case err == nil:
			entities, err := s.Snapshots.Entities(ctx, snap.ID)
			if err != nil {
				return repository.Snapshot{}, nil, fmt.Errorf("load snapshot %s: %w", snap.ID, err)
			}
			log.Info("using cached snapshot", "snapshot", snap.ID, "committees", len(entities))
			return snap, entities, nil
		case !errors.Is(err, database.ErrNotFound):
			return repository.Snapshot{}, nil, fmt.Errorf("lookup snapshot: %w", err)
		}
	}

	if s.Fetcher == nil {
		return repository.Snapshot{}, nil, fmt.Errorf("no snapshot cached for %s and no fetcher configured", day)
	}
	log.Info("fetching committees")
	entities, err := s.Fetcher.FetchAll(ctx)
	if err != nil {
		return repository.Snapshot{}, nil, fmt.Errorf("fetch committees: %w", err)
	}

	source := s.Source
	if source == "" {
		source = "api"
	}
	snap := repository.Snapshot{Day: day, Source: source}
	if err := s.Snapshots.Create(ctx, &snap, entities); err != nil {
		return repository.Snapshot{}, nil, fmt.Errorf("cache snapshot: %w", err)
	}
	log.Info("snapshot cached", "snapshot", snap.ID, "committees", len(entities), "hash", snap.ContentHash[:12])
	return snap, entities, nil
}
