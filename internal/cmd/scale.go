package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/noot-app/mealplan-scaler/internal/config"
	"github.com/noot-app/mealplan-scaler/internal/scaling"
	"github.com/noot-app/mealplan-scaler/internal/types"
	"github.com/spf13/cobra"
)

func newScaleCmd() *cobra.Command {
	var (
		planID string
		day    string
		weight float64
	)

	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Scale one day of a plan to a body weight and print the result as JSON",
		Example: `  mealplan-scaler scale --plan cut-2000 --day maandag --weight 85
  mealplan-scaler scale --plan cut-2000 --day tuesday --weight 120`,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekday, err := types.ParseWeekday(day)
			if err != nil {
				return err
			}

			logger := config.NewLogger(true)
			a, err := newApp(cmd.Context(), config.Load(), logger)
			if err != nil {
				return err
			}
			defer a.store.Close()

			d, err := a.store.GetDay(cmd.Context(), planID, weekday)
			if err != nil {
				return fmt.Errorf("load %s of plan %s: %w", weekday, planID, err)
			}

			result := a.engine.Scale(d, types.ScalingContext{BodyWeightKg: weight, Day: weekday})
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&planID, "plan", "p", "", "Plan identifier")
	cmd.Flags().StringVarP(&day, "day", "d", "", "Weekday, Dutch or English")
	cmd.Flags().Float64VarP(&weight, "weight", "w", scaling.DefaultReferenceWeightKg, "Body weight in kilograms")
	cmd.MarkFlagRequired("plan")
	cmd.MarkFlagRequired("day")

	return cmd
}

// tableRow is the condensed per-weight output of the table command
type tableRow struct {
	BodyWeightKg float64                `json:"body_weight_kg"`
	Factor       float64                `json:"factor"`
	Targets      types.Macros           `json:"targets"`
	Totals       types.Macros           `json:"totals"`
	Correction   scaling.CorrectionKind `json:"correction"`
	Unresolved   bool                   `json:"unresolved,omitempty"`
}

func newTableCmd() *cobra.Command {
	var (
		planID string
		day    string
		minKg  float64
		maxKg  float64
		stepKg float64
	)

	cmd := &cobra.Command{
		Use:     "table",
		Short:   "Scale one day of a plan for a range of body weights and print the totals as JSON",
		Example: `  mealplan-scaler table --plan cut-2000 --day maandag --min 70 --max 130 --step 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			weekday, err := types.ParseWeekday(day)
			if err != nil {
				return err
			}
			weights, err := scaling.WeightRange(minKg, maxKg, stepKg)
			if err != nil {
				return err
			}

			logger := config.NewLogger(true)
			a, err := newApp(cmd.Context(), config.Load(), logger)
			if err != nil {
				return err
			}
			defer a.store.Close()

			d, err := a.store.GetDay(cmd.Context(), planID, weekday)
			if err != nil {
				return fmt.Errorf("load %s of plan %s: %w", weekday, planID, err)
			}

			results, err := a.engine.Table(cmd.Context(), d, weekday, weights)
			if err != nil {
				return err
			}

			rows := make([]tableRow, 0, len(results))
			for _, r := range results {
				rows = append(rows, tableRow{
					BodyWeightKg: r.BodyWeightKg,
					Factor:       r.Factor,
					Targets:      r.Targets,
					Totals:       r.Totals.Round(),
					Correction:   r.Correction.Kind,
					Unresolved:   r.Correction.Unresolved,
				})
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVarP(&planID, "plan", "p", "", "Plan identifier")
	cmd.Flags().StringVarP(&day, "day", "d", "", "Weekday, Dutch or English")
	cmd.Flags().Float64Var(&minKg, "min", scaling.DefaultTableMinKg, "Lowest body weight in kilograms")
	cmd.Flags().Float64Var(&maxKg, "max", scaling.DefaultTableMaxKg, "Highest body weight in kilograms")
	cmd.Flags().Float64Var(&stepKg, "step", scaling.DefaultTableStepKg, "Step between weights in kilograms")
	cmd.MarkFlagRequired("plan")
	cmd.MarkFlagRequired("day")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
