// Package dataset loads the reference crop table from disk at startup.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/HerbHall/cropadvisor/internal/store"
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

// Sentinel errors. Both are fatal at startup.
var (
	ErrNotFound          = errors.New("dataset not found")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Load reads the dataset at path. An empty path selects the embedded sample.
// The format is chosen by extension: .csv, .yaml/.yml, or .db/.sqlite/.sqlite3.
// rankKey overrides the rank column recorded in the file, if non-empty.
func Load(ctx context.Context, path, rankKey string) (*crop.Dataset, error) {
	if path == "" {
		ds, err := crop.Sample()
		if err != nil {
			return nil, err
		}
		return withRankKey(ds, rankKey), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat dataset %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadCSV(path, rankKey)
	case ".yaml", ".yml":
		return loadYAML(path, rankKey)
	case ".db", ".sqlite", ".sqlite3":
		return loadSQLite(ctx, path, rankKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func loadCSV(path, rankKey string) (*crop.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, columns, err := crop.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return crop.NewDataset(records,
		crop.WithRankKey(rankKey),
		crop.WithColumns(columns),
		crop.WithSource(path)), nil
}

func loadYAML(path, rankKey string) (*crop.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	records, fileRankKey, err := crop.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rankKey == "" {
		rankKey = fileRankKey
	}
	return crop.NewDataset(records,
		crop.WithRankKey(rankKey),
		crop.WithColumns(yamlColumns(records)),
		crop.WithSource(path)), nil
}

func loadSQLite(ctx context.Context, path, rankKey string) (*crop.Dataset, error) {
	st, err := store.New(path, store.ReadOnly())
	if err != nil {
		return nil, err
	}
	defer st.Close()

	repo, err := store.OpenCropRepository(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds, err := repo.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return withRankKey(ds, rankKey), nil
}

// yamlColumns lists the measurement attributes first, then any other fields
// in first-seen order, then the label.
func yamlColumns(records []crop.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, a := range crop.Attributes() {
		seen[string(a)] = true
		cols = append(cols, string(a))
	}
	for _, r := range records {
		var extra []string
		for name := range r.Fields {
			if !seen[name] {
				extra = append(extra, name)
			}
		}
		slices.Sort(extra)
		for _, name := range extra {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	return append(cols, crop.LabelColumn)
}

// Import writes ds into the SQLite database at dbPath, replacing any dataset
// already stored there.
func Import(ctx context.Context, ds *crop.Dataset, dbPath string) error {
	st, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	repo, err := store.NewCropRepository(ctx, st)
	if err != nil {
		return err
	}
	return repo.Replace(ctx, ds)
}

// withRankKey returns ds re-snapshotted with a different rank key, or ds
// itself when no override applies.
func withRankKey(ds *crop.Dataset, rankKey string) *crop.Dataset {
	if rankKey == "" || rankKey == ds.RankKey() {
		return ds
	}
	return crop.NewDataset(ds.Records(),
		crop.WithRankKey(rankKey),
		crop.WithColumns(ds.Columns()),
		crop.WithSource(ds.Source()))
}
