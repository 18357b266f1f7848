package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/HerbHall/cropadvisor/pkg/crop"
)

// ErrEmptyDatabase is returned when a database holds no imported dataset.
var ErrEmptyDatabase = errors.New("no dataset imported")

// CropRepository reads and writes a reference dataset. Fields are stored one
// row per (crop, column) so a record can lack a column, which is surfaced as
// crop.ErrMissingAttribute when the engine reads it.
type CropRepository struct {
	db *sql.DB
	st *SQLiteStore
}

const cropSchema = "crops"

// NewCropRepository runs the crop schema migrations and returns a repository.
func NewCropRepository(ctx context.Context, st *SQLiteStore) (*CropRepository, error) {
	if err := st.Migrate(ctx, cropSchema, cropMigrations); err != nil {
		return nil, fmt.Errorf("crop migrations: %w", err)
	}
	return &CropRepository{db: st.DB(), st: st}, nil
}

// OpenCropRepository returns a repository over an already-imported database
// without migrating it. A database that never received the crop schema
// reports ErrEmptyDatabase; one behind the current schema must be
// re-imported.
func OpenCropRepository(ctx context.Context, st *SQLiteStore) (*CropRepository, error) {
	version, err := st.SchemaVersion(ctx, cropSchema)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, ErrEmptyDatabase
	}
	if want := cropMigrations[len(cropMigrations)-1].Version; version < want {
		return nil, fmt.Errorf("crop schema at version %d, want %d: re-import the dataset", version, want)
	}
	return &CropRepository{db: st.DB(), st: st}, nil
}

// Replace overwrites the stored dataset with ds in a single transaction.
func (r *CropRepository) Replace(ctx context.Context, ds *crop.Dataset) error {
	return r.st.Tx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM crop_fields`,
			`DELETE FROM crops`,
			`DELETE FROM dataset_columns`,
			`DELETE FROM dataset_meta`,
		} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("clear dataset: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dataset_meta (key, value) VALUES ('rank_key', ?), ('source', ?)`,
			ds.RankKey(), ds.Source(),
		); err != nil {
			return fmt.Errorf("insert dataset meta: %w", err)
		}

		for i, col := range ds.Columns() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO dataset_columns (position, name) VALUES (?, ?)`, i, col,
			); err != nil {
				return fmt.Errorf("insert column %q: %w", col, err)
			}
		}

		for i, rec := range ds.Records() {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO crops (position, label) VALUES (?, ?)`, i, rec.Label)
			if err != nil {
				return fmt.Errorf("insert crop %q: %w", rec.Label, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("crop id for %q: %w", rec.Label, err)
			}
			for name, value := range rec.Fields {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO crop_fields (crop_id, name, value) VALUES (?, ?, ?)`,
					id, name, value,
				); err != nil {
					return fmt.Errorf("insert field %s for %q: %w", name, rec.Label, err)
				}
			}
		}
		return nil
	})
}

// Load reads the stored dataset as a new snapshot, in the order it was saved.
func (r *CropRepository) Load(ctx context.Context, source string) (*crop.Dataset, error) {
	meta, err := r.meta(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := meta["rank_key"]; !ok {
		return nil, ErrEmptyDatabase
	}

	columns, err := r.columns(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.label, f.name, f.value
		FROM crops c
		LEFT JOIN crop_fields f ON f.crop_id = c.id
		ORDER BY c.position, f.name`)
	if err != nil {
		return nil, fmt.Errorf("query crops: %w", err)
	}
	defer rows.Close()

	var records []crop.Record
	lastID := int64(-1)
	for rows.Next() {
		var (
			id    int64
			label string
			name  sql.NullString
			value sql.NullFloat64
		)
		if err := rows.Scan(&id, &label, &name, &value); err != nil {
			return nil, fmt.Errorf("scan crop row: %w", err)
		}
		if id != lastID {
			records = append(records, crop.Record{Label: label, Fields: map[string]float64{}})
			lastID = id
		}
		if name.Valid && value.Valid {
			records[len(records)-1].Fields[name.String] = value.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crops: %w", err)
	}

	return crop.NewDataset(records,
		crop.WithRankKey(meta["rank_key"]),
		crop.WithColumns(columns),
		crop.WithSource(source),
	), nil
}

func (r *CropRepository) meta(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM dataset_meta`)
	if err != nil {
		return nil, fmt.Errorf("query dataset meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan dataset meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (r *CropRepository) columns(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM dataset_columns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query dataset columns: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan dataset column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// cropMigrations defines the database schema for stored datasets.
var cropMigrations = []Migration{
	{
		Version:     1,
		Description: "create crop tables",
		Up: func(tx *sql.Tx) error {
			for _, stmt := range []string{
				`CREATE TABLE crops (
					id       INTEGER PRIMARY KEY AUTOINCREMENT,
					position INTEGER NOT NULL,
					label    TEXT    NOT NULL
				)`,
				`CREATE TABLE crop_fields (
					crop_id INTEGER NOT NULL REFERENCES crops(id) ON DELETE CASCADE,
					name    TEXT    NOT NULL,
					value   REAL    NOT NULL,
					PRIMARY KEY (crop_id, name)
				)`,
				`CREATE TABLE dataset_columns (
					position INTEGER PRIMARY KEY,
					name     TEXT NOT NULL
				)`,
				`CREATE TABLE dataset_meta (
					key   TEXT PRIMARY KEY,
					value TEXT NOT NULL
				)`,
			} {
				if _, err := tx.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		},
	},
}
