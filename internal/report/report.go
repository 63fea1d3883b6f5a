package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/jask/pacfrag/internal/overlap"
)

// ErrIncomplete means publishing failed part way; every file touched by the
// attempt has been removed again.
var ErrIncomplete = errors.New("report not published")

const dayLayout = "20060102"

// Day formats t as the YYYYMMDD stamp used in artifact names.
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDay validates a YYYYMMDD stamp.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("day %q: want YYYYMMDD", s)
	}
	return t, nil
}

// Paths names the artifacts of one day.
type Paths struct {
	Snapshot string
	Names    string
	Ngrams   string
	Receipts string
}

func PathsFor(dir, day string) Paths {
	return Paths{
		Snapshot: filepath.Join(dir, day+".json"),
		Names:    filepath.Join(dir, day+"-names.txt"),
		Ngrams:   filepath.Join(dir, day+"-ngrams.json"),
		Receipts: filepath.Join(dir, day+"-receipts.json"),
	}
}

// Writer publishes report artifacts into one directory.
type Writer struct {
	fs  afero.Fs
	dir string
}

func NewWriter(fs afero.Fs, dir string) *Writer {
	return &Writer{fs: fs, dir: dir}
}

// Publish writes the raw snapshot, the name list, the overlap report and the
// receipt table for day. Either all four files land or none do.
func (w *Writer) Publish(day string, entities []overlap.Entity, rep *overlap.Report) (Paths, error) {
	paths := PathsFor(w.dir, day)

	if entities == nil {
		entities = []overlap.Entity{}
	}
	snapshot, err := json.Marshal(entities)
	if err != nil {
		return Paths{}, fmt.Errorf("encode snapshot: %w", err)
	}
	ngrams, err := json.Marshal(rep.Fragments)
	if err != nil {
		return Paths{}, fmt.Errorf("encode ngrams: %w", err)
	}
	receipts, err := json.Marshal(rep.Receipts)
	if err != nil {
		return Paths{}, fmt.Errorf("encode receipts: %w", err)
	}
	files := []pending{
		{path: paths.Snapshot, data: snapshot},
		{path: paths.Names, data: nameList(entities)},
		{path: paths.Ngrams, data: ngrams},
		{path: paths.Receipts, data: receipts},
	}

	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("%w: mkdir %s: %v", ErrIncomplete, w.dir, err)
	}
	if err := w.stage(files); err != nil {
		return Paths{}, err
	}
	if err := w.commit(files); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

type pending struct {
	path string
	data []byte
	tmp  string
	done bool
}

func (w *Writer) stage(files []pending) error {
	for i := range files {
		f, err := afero.TempFile(w.fs, w.dir, "."+filepath.Base(files[i].path)+".*")
		if err != nil {
			w.rollback(files)
			return fmt.Errorf("%w: stage %s: %v", ErrIncomplete, files[i].path, err)
		}
		files[i].tmp = f.Name()
		_, werr := f.Write(files[i].data)
		cerr := f.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			w.rollback(files)
			return fmt.Errorf("%w: write %s: %v", ErrIncomplete, files[i].path, werr)
		}
	}
	return nil
}

func (w *Writer) commit(files []pending) error {
	for i := range files {
		if err := w.fs.Rename(files[i].tmp, files[i].path); err != nil {
			w.rollback(files)
			return fmt.Errorf("%w: publish %s: %v", ErrIncomplete, files[i].path, err)
		}
		files[i].done = true
	}
	return nil
}

func (w *Writer) rollback(files []pending) {
	for _, f := range files {
		switch {
		case f.done:
			_ = w.fs.Remove(f.path)
		case f.tmp != "":
			_ = w.fs.Remove(f.tmp)
		}
	}
}

func nameList(entities []overlap.Entity) []byte {
	var buf bytes.Buffer
	for i, e := range entities {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(e.Name)
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// ReadEntities loads a JSON array of committee records, keeping file order.
func ReadEntities(fs afero.Fs, path string) ([]overlap.Entity, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var entities []overlap.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return entities, nil
}

// ReadReport loads the published overlap report and receipt table for day.
func ReadReport(fs afero.Fs, dir, day string) (overlap.OverlapReport, overlap.ReceiptTable, error) {
	paths := PathsFor(dir, day)
	var (
		frags    overlap.OverlapReport
		receipts overlap.ReceiptTable
	)
	for _, f := range []struct {
		path string
		into any
	}{{paths.Ngrams, &frags}, {paths.Receipts, &receipts}} {
		data, err := afero.ReadFile(fs, f.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil, fmt.Errorf("no report for %s in %s: %w", day, dir, err)
			}
			return nil, nil, err
		}
		if err := json.Unmarshal(data, f.into); err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", f.path, err)
		}
	}
	return frags, receipts, nil
}
