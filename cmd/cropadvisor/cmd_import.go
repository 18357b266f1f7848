package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/cropadvisor/internal/dataset"
)

func (a *app) newImportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the reference dataset into a SQLite database",
		Long: `Reads the dataset selected by --dataset (CSV, YAML, or the built-in
sample) and writes it to a SQLite database, replacing any dataset already
stored there. The database can then be served with --dataset <file>.db.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := dataset.Load(cmd.Context(), a.settings.Dataset.Path, a.settings.Dataset.RankKey)
			if err != nil {
				a.logger.Error("failed to load reference dataset", zap.Error(err))
				return err
			}
			if err := dataset.Import(cmd.Context(), ds, out); err != nil {
				return fmt.Errorf("import into %s: %w", out, err)
			}
			a.logger.Info("dataset imported",
				zap.String("source", ds.Source()),
				zap.String("database", out),
				zap.Int("records", ds.Len()))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d records into %s\n", ds.Len(), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "SQLite database to write")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
