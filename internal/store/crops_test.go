package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/HerbHall/cropadvisor/internal/store"
	"github.com/HerbHall/cropadvisor/internal/testutil"
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

func newRepo(t *testing.T) *store.CropRepository {
	t.Helper()
	repo, err := store.NewCropRepository(context.Background(), testutil.NewStore(t))
	if err != nil {
		t.Fatalf("NewCropRepository() error = %v", err)
	}
	return repo
}

func TestCropRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	want := crop.NewDataset([]crop.Record{
		testutil.NewRecord(),
		testutil.NewRecord(testutil.WithLabel("maize"), testutil.WithYield(55)),
		testutil.NewRecord(testutil.WithLabel("lentil"), testutil.WithoutField(string(crop.Rainfall))),
		{Label: "bare", Fields: map[string]float64{}},
	},
		crop.WithRankKey("value"),
		crop.WithColumns([]string{"nitrogen", "label", "value"}),
	)

	if err := repo.Replace(ctx, want); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	got, err := repo.Load(ctx, "test.db")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff(want.Records(), got.Records()); diff != "" {
		t.Errorf("Records() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Columns(), got.Columns()); diff != "" {
		t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
	}
	if got.RankKey() != "value" {
		t.Errorf("RankKey() = %q, want value", got.RankKey())
	}
	if got.Source() != "test.db" {
		t.Errorf("Source() = %q, want test.db", got.Source())
	}
}

func TestCropRepository_ReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	first := testutil.NewDataset(testutil.NewRecord(), testutil.NewRecord(testutil.WithLabel("maize")))
	second := testutil.NewDataset(testutil.NewRecord(testutil.WithLabel("cotton")))

	if err := repo.Replace(ctx, first); err != nil {
		t.Fatalf("Replace(first) error = %v", err)
	}
	if err := repo.Replace(ctx, second); err != nil {
		t.Fatalf("Replace(second) error = %v", err)
	}

	got, err := repo.Load(ctx, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Len() != 1 || got.Records()[0].Label != "cotton" {
		t.Errorf("Load() = %+v, want only cotton", got.Records())
	}
}

func TestCropRepository_Empty(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Load(context.Background(), "")
	if !errors.Is(err, store.ErrEmptyDatabase) {
		t.Errorf("Load() error = %v, want ErrEmptyDatabase", err)
	}
}

func TestOpenCropRepository(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	if _, err := store.OpenCropRepository(ctx, st); !errors.Is(err, store.ErrEmptyDatabase) {
		t.Fatalf("OpenCropRepository() on fresh store error = %v, want ErrEmptyDatabase", err)
	}

	rw, err := store.NewCropRepository(ctx, st)
	if err != nil {
		t.Fatalf("NewCropRepository() error = %v", err)
	}
	if err := rw.Replace(ctx, testutil.NewDataset(testutil.NewRecord())); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	ro, err := store.OpenCropRepository(ctx, st)
	if err != nil {
		t.Fatalf("OpenCropRepository() error = %v", err)
	}
	got, err := ro.Load(ctx, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("Len() = %d, want 1", got.Len())
	}
}
