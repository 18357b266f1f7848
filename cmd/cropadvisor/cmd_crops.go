package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HerbHall/cropadvisor/internal/dataset"
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

func (a *app) newCropsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "crops",
		Short: "List the reference dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := dataset.Load(cmd.Context(), a.settings.Dataset.Path, a.settings.Dataset.RankKey)
			if err != nil {
				a.logger.Error("failed to load reference dataset", zap.Error(err))
				return err
			}

			switch format {
			case "csv":
				return crop.WriteCSV(cmd.OutOrStdout(), ds)
			case "table":
			default:
				return fmt.Errorf("unknown format %q (want table or csv)", format)
			}

			var numeric []string
			for _, col := range ds.Columns() {
				if col != crop.LabelColumn {
					numeric = append(numeric, col)
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.ToUpper(crop.LabelColumn)+"\t"+strings.ToUpper(strings.Join(numeric, "\t")))
			for _, r := range ds.Records() {
				row := make([]string, 0, len(numeric)+1)
				row = append(row, r.Label)
				for _, col := range numeric {
					if v, ok := r.Fields[col]; ok {
						row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
					} else {
						row = append(row, "-")
					}
				}
				fmt.Fprintln(tw, strings.Join(row, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%d records from %s, ranked by %s\n",
				ds.Len(), ds.Source(), ds.RankKey())
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or csv")
	return cmd
}
