package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/pacfrag/internal/database/repository"
	"github.com/jask/pacfrag/internal/overlap"
)

var (
	prefixes = []string{"AMERICANS FOR", "CITIZENS FOR", "COMMITTEE TO", "FRIENDS OF", "RESTORE", "WINNING", "PROTECT"}
	subjects = []string{"PROSPERITY", "LIBERTY", "JOBS", "AMERICA", "OUR FUTURE", "FREEDOM", "WORKING FAMILIES", "TEXAS"}
	suffixes = []string{"PAC", "SUPER PAC", "ACTION FUND", "INC", "", ""}
	decor    = []string{"", "", "", ", THE", "; THE", " (2012)", " / VICTORY"}
)

// Committees returns n synthetic committee records with realistic naming
// overlap. The same seed always yields the same list.
func Committees(seed int64, n int) []overlap.Entity {
	r := rand.New(rand.NewSource(seed))
	seen := make(map[string]bool, n)
	out := make([]overlap.Entity, 0, n)
	for len(out) < n {
		parts := []string{pick(r, prefixes), pick(r, subjects), pick(r, suffixes)}
		name := strings.TrimSpace(strings.Join(parts, " ")) + pick(r, decor)
		if seen[name] {
			name = fmt.Sprintf("%s %d", name, len(out))
		}
		seen[name] = true

		e := overlap.Entity{Name: name}
		if r.Intn(5) > 0 {
			total := decimal.New(int64(r.Intn(5_000_000)), -2)
			e.TotalReceipts = &total
		}
		out = append(out, e)
	}
	return out
}

// Seed stores a synthetic snapshot for day and returns its id.
func Seed(ctx context.Context, snapshots *repository.SnapshotRepo, day string, n int) (string, error) {
	snap := repository.Snapshot{Day: day, Source: "testdata"}
	if err := snapshots.Create(ctx, &snap, Committees(int64(len(day)+n), n)); err != nil {
		return "", err
	}
	return snap.ID, nil
}

func pick(r *rand.Rand, list []string) string {
	return list[r.Intn(len(list))]
}
