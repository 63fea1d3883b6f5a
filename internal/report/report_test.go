package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jask/pacfrag/internal/overlap"
)

func fixture(t *testing.T) ([]overlap.Entity, *overlap.Report) {
	t.Helper()
	hundred := decimal.NewFromInt(100)
	entities := []overlap.Entity{
		{Name: "AMERICANS FOR PROSPERITY, THE", TotalReceipts: &hundred},
		{Name: "AMERICANS FOR LIBERTY"},
		{Name: "SOLO"},
	}
	rep, err := overlap.Analyze(entities)
	require.NoError(t, err)
	return entities, rep
}

func TestPublishWritesAllArtifacts(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	entities, rep := fixture(t)

	paths, err := NewWriter(fs, "/out").Publish("20120601", entities, rep)
	require.NoError(t, err)
	require.Equal(t, "/out/20120601-ngrams.json", filepath.ToSlash(paths.Ngrams))

	names, err := afero.ReadFile(fs, paths.Names)
	require.NoError(t, err)
	require.Equal(t, "AMERICANS FOR PROSPERITY, THE\nAMERICANS FOR LIBERTY\nSOLO\n", string(names))

	back, err := ReadEntities(fs, paths.Snapshot)
	require.NoError(t, err)
	require.Len(t, back, 3)
	require.Equal(t, "100", back[0].Receipts().String())

	frags, receipts, err := ReadReport(fs, "/out", "20120601")
	require.NoError(t, err)
	require.Equal(t, rep.Fragments, frags)
	require.Len(t, receipts, 2)
	require.True(t, receipts["AMERICANS FOR LIBERTY"].IsZero())

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), "."), "leftover temp file %s", e.Name())
	}
	require.Len(t, entries, 4)
}

type failingRename struct {
	afero.Fs
	suffix string
}

func (f failingRename) Rename(oldname, newname string) error {
	if strings.HasSuffix(newname, f.suffix) {
		return errors.New("disk full")
	}
	return f.Fs.Rename(oldname, newname)
}

func TestPublishIsAllOrNothing(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	fs := failingRename{Fs: base, suffix: "-receipts.json"}
	entities, rep := fixture(t)

	_, err := NewWriter(fs, "/out").Publish("20120601", entities, rep)
	require.ErrorIs(t, err, ErrIncomplete)

	entries, err := afero.ReadDir(base, "/out")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPublishEmptyReport(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	rep, err := overlap.Analyze(nil)
	require.NoError(t, err)

	paths, err := NewWriter(fs, "out").Publish("20120601", nil, rep)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, paths.Snapshot)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
	data, err = afero.ReadFile(fs, paths.Ngrams)
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

func TestReadReportMissing(t *testing.T) {
	t.Parallel()

	_, _, err := ReadReport(afero.NewMemMapFs(), "/out", "20120601")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadEntitiesRejectsGarbage(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "in.json", []byte(`{"name":"not a list"}`), 0o644))
	_, err := ReadEntities(fs, "in.json")
	require.Error(t, err)
}

func TestDay(t *testing.T) {
	t.Parallel()

	require.Equal(t, "20120601", Day(time.Date(2012, 6, 1, 15, 0, 0, 0, time.UTC)))
	_, err := ParseDay("2012-06-01")
	require.Error(t, err)
	d, err := ParseDay("20120601")
	require.NoError(t, err)
	require.Equal(t, 2012, d.Year())
}
