// Package cmd - plan command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"filmscope/core/budget"
	"filmscope/core/planfile"
	"filmscope/internal/logging"
)

var (
	planFormat  string
	planDetails bool
)

// planCmd allocates every plan declared in an HCL file
var planCmd = &cobra.Command{
	Use:   "plan <file.hcl>",
	Short: "Allocate the budgets declared in a plan file",
	Long: `Read one or more plan blocks from an HCL file and allocate each.

Example plan file:

  plan "festival" {
    budget = 12000
    goal   = "grassroots"

    grassroots {
      cities              = ["Austin", "Denver"]
      screenings_per_city = 2
    }
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "", "output format (cli, json)")
	planCmd.Flags().BoolVarP(&planDetails, "details", "d", true, "show the line-item breakdown")
}

type namedPlan struct {
	Name string      `json:"name"`
	Plan budget.Plan `json:"plan"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	inputs, err := planfile.Load(args[0])
	if err != nil {
		return userError(err)
	}

	logging.Debug("loaded plan file",
		zap.String("path", args[0]),
		zap.Int("plans", len(inputs)))

	plans := make([]namedPlan, 0, len(inputs))
	for _, in := range inputs {
		plans = append(plans, namedPlan{Name: in.Name, Plan: budget.Allocate(in.Input)})
	}

	if planFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), plans)
	}

	details := showDetails(cmd, planDetails)
	w := cmd.OutOrStdout()
	for i, p := range plans {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Plan %q\n", p.Name)
		if err := renderPlan(cmd, p.Plan, planFormat, details); err != nil {
			return err
		}
	}
	return nil
}
