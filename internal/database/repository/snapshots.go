package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/pacfrag/internal/database"
	"github.com/jask/pacfrag/internal/overlap"
)

// SnapshotRepo handles cached committee snapshots.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// Create stores a snapshot and its committees in retrieval order. ID, count
// and content hash are filled in on s.
func (r *SnapshotRepo) Create(ctx context.Context, s *Snapshot, entities []overlap.Entity) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.EntityCount = len(entities)
	s.ContentHash = ContentHash(entities)
	s.CreatedAt = database.Now()

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots(id, day, source, entity_count, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, s.Day, s.Source, s.EntityCount, s.ContentHash, s.CreatedAt); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO committees(snapshot_id, position, name, total_receipts, raw)
		VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, e := range entities {
			var total *string
			if e.TotalReceipts != nil {
				v := e.TotalReceipts.String()
				total = &v
			}
			var raw *string
			if len(e.Raw) > 0 {
				v := string(e.Raw)
				raw = &v
			}
			if _, err := stmt.ExecContext(ctx, s.ID, i, e.Name, total, raw); err != nil {
				return fmt.Errorf("insert committee %d: %w", i, err)
			}
		}
		return nil
	})
}

// Latest returns the newest snapshot for day, or database.ErrNotFound.
func (r *SnapshotRepo) Latest(ctx context.Context, day string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, day, source, entity_count, content_hash, created_at
	FROM snapshots WHERE day = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, day)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, database.ErrNotFound
	}
	return s, err
}

// List returns all snapshots, newest first.
func (r *SnapshotRepo) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, day, source, entity_count, content_hash, created_at
	FROM snapshots ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Entities loads a snapshot's committees in their original order.
func (r *SnapshotRepo) Entities(ctx context.Context, snapshotID string) ([]overlap.Entity, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT name, total_receipts, raw FROM committees WHERE snapshot_id = ? ORDER BY position`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []overlap.Entity
	for rows.Next() {
		var (
			e     overlap.Entity
			total sql.NullString
			raw   sql.NullString
		)
		if err := rows.Scan(&e.Name, &total, &raw); err != nil {
			return nil, err
		}
		if total.Valid {
			d, err := decimal.NewFromString(total.String)
			if err != nil {
				return nil, fmt.Errorf("committee %q receipts: %w", e.Name, err)
			}
			e.TotalReceipts = &d
		}
		if raw.Valid {
			e.Raw = []byte(raw.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteBefore removes snapshots created before cutoff and returns how many went.
func (r *SnapshotRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.Day, &s.Source, &s.EntityCount, &s.ContentHash, &s.CreatedAt)
	return s, err
}

// ContentHash fingerprints the names and receipts of a committee list.
func ContentHash(entities []overlap.Entity) string {
	h := sha256.New()
	for _, e := range entities {
		fmt.Fprintf(h, "%s|%s\n", e.Name, e.Receipts().String())
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
