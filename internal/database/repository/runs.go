package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/pacfrag/internal/database"
)

// RunRepo handles the analysis run log.
type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo { return &RunRepo{db: db} }

func (r *RunRepo) Insert(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = database.Now()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO runs(id, snapshot_id, source, entity_count, fragment_count, committee_count, output_dir, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SnapshotID, run.Source, run.EntityCount, run.FragmentCount, run.CommitteeCount,
		run.OutputDir, run.CreatedAt)
	return err
}

// List returns runs newest first.
func (r *RunRepo) List(ctx context.Context) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, snapshot_id, source, entity_count, fragment_count, committee_count, output_dir, created_at
	FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SnapshotID, &run.Source, &run.EntityCount, &run.FragmentCount,
			&run.CommitteeCount, &run.OutputDir, &run.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
