package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HerbHall/cropadvisor/internal/knapsack"
)

func (a *app) newSelectCmd() *cobra.Command {
	var (
		capacity int
		raw      []string
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the most valuable crops within a capacity",
		Long: `Chooses the subset of items whose total weight fits the capacity and whose
total value is maximal. Items are given as label:weight:value. Without
--item, the reference dataset's weight and value columns are used.

Example:
  cropadvisor select --capacity 5 --item a:2:3 --item b:3:4 --item c:4:5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adv, err := a.loadAdvisor(cmd.Context())
			if err != nil {
				return err
			}

			var res knapsack.Result
			if len(raw) == 0 {
				res, err = adv.Plan(capacity)
			} else {
				items, perr := parseItems(raw)
				if perr != nil {
					return perr
				}
				res, err = adv.Select(items, capacity)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tWEIGHT\tVALUE")
			for _, it := range res.Items {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", it.Label, it.Weight, it.Value)
			}
			fmt.Fprintf(tw, "TOTAL\t%d\t%d\n", res.TotalWeight, res.TotalValue)
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&capacity, "capacity", 0, "maximum total weight")
	cmd.Flags().StringArrayVar(&raw, "item", nil, "candidate item as label:weight:value (repeatable)")
	_ = cmd.MarkFlagRequired("capacity")
	return cmd
}

// parseItems parses label:weight:value triples. The label may itself
// contain colons; weight and value are the last two fields.
func parseItems(raw []string) ([]knapsack.Item, error) {
	items := make([]knapsack.Item, 0, len(raw))
	for _, s := range raw {
		i := strings.LastIndex(s, ":")
		if i < 0 {
			return nil, fmt.Errorf("item %q: want label:weight:value", s)
		}
		j := strings.LastIndex(s[:i], ":")
		if j < 0 {
			return nil, fmt.Errorf("item %q: want label:weight:value", s)
		}
		weight, err := strconv.Atoi(s[j+1 : i])
		if err != nil {
			return nil, fmt.Errorf("item %q: weight: %w", s, err)
		}
		value, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return nil, fmt.Errorf("item %q: value: %w", s, err)
		}
		items = append(items, knapsack.Item{Label: s[:j], Weight: weight, Value: value})
	}
	return items, nil
}
