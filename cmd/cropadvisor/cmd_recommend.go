package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HerbHall/cropadvisor/internal/advisor"
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

func (a *app) newRecommendCmd() *cobra.Command {
	var (
		q    crop.Query
		name string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend crops for a set of measurements",
		Long: `Matches the given soil and climate measurements against the reference
dataset and prints the matching crops ordered by rank key, lowest first.
When nothing matches, a fixed fallback recommendation is printed.

Example:
  cropadvisor recommend --nitrogen 90 --phosphorus 42 --potassium 43 \
    --temperature 20.88 --humidity 82 --ph 6.5 --rainfall 202.94 --name Asha`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adv, err := a.loadAdvisor(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := adv.Recommend(q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if name != "" {
				_, err = fmt.Fprintln(out, advisor.Greeting(name, rec))
				return err
			}
			for _, label := range rec.Labels {
				if _, err := fmt.Fprintln(out, label); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&q.Nitrogen, "nitrogen", 0, "soil nitrogen (N)")
	f.Float64Var(&q.Phosphorus, "phosphorus", 0, "soil phosphorus (P)")
	f.Float64Var(&q.Potassium, "potassium", 0, "soil potassium (K)")
	f.Float64Var(&q.Temperature, "temperature", 0, "temperature in degrees Celsius")
	f.Float64Var(&q.Humidity, "humidity", 0, "relative humidity in percent")
	f.Float64Var(&q.PH, "ph", 0, "soil pH")
	f.Float64Var(&q.Rainfall, "rainfall", 0, "rainfall in mm")
	f.StringVar(&name, "name", "", "greet the named farmer in the output")
	for _, attr := range crop.Attributes() {
		_ = cmd.MarkFlagRequired(string(attr))
	}
	return cmd
}
