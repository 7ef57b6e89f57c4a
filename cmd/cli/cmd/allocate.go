// Package cmd - allocate command
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"filmscope/core/budget"
	"filmscope/internal/config"
	"filmscope/internal/logging"
)

var (
	allocBudget     string
	allocGoal       string
	allocCities     string
	allocScreenings int
	allocFormat     string
	allocDetails    bool
	allocLenient    bool
)

// allocateCmd splits a budget across marketing channels
var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Split a marketing budget across channels",
	Long: `Allocate a total marketing budget across channels for a campaign goal.

Goals: default, awareness, engagement, conversion, grassroots.

Examples:
  filmscope allocate --budget 25000 --goal awareness
  filmscope allocate --budget '$10,000' --goal grassroots --cities "NY, LA" --screenings 2
  filmscope allocate --budget 5000 --format json`,
	Args: cobra.NoArgs,
	RunE: runAllocate,
}

func init() {
	allocateCmd.Flags().StringVarP(&allocBudget, "budget", "b", "", "total marketing budget")
	allocateCmd.Flags().StringVarP(&allocGoal, "goal", "g", "default", "campaign goal")
	allocateCmd.Flags().StringVar(&allocCities, "cities", "", "comma-separated tour cities (grassroots goal)")
	allocateCmd.Flags().IntVar(&allocScreenings, "screenings", 1, "screenings per city (grassroots goal)")
	allocateCmd.Flags().StringVarP(&allocFormat, "format", "f", "", "output format (cli, json)")
	allocateCmd.Flags().BoolVarP(&allocDetails, "details", "d", true, "show the line-item breakdown")
	allocateCmd.Flags().BoolVar(&allocLenient, "lenient", false, "treat a bad budget as zero instead of failing")
	_ = allocateCmd.MarkFlagRequired("budget")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	form := budget.FormInput{
		TotalBudget:          allocBudget,
		Goal:                 allocGoal,
		GrassrootsCities:     allocCities,
		GrassrootsScreenings: strconv.Itoa(allocScreenings),
	}

	var in budget.Input
	if allocLenient {
		in = budget.Coerce(form)
	} else {
		var err error
		if in, err = budget.ParseForm(form); err != nil {
			return userError(err)
		}
	}

	logging.Debug("allocating budget",
		zap.String("goal", in.Goal.String()),
		zap.String("budget", in.TotalBudget.String()))

	plan := budget.Allocate(in)
	return renderPlan(cmd, plan, allocFormat, showDetails(cmd, allocDetails))
}

// showDetails honours an explicit --details flag, otherwise the config
func showDetails(cmd *cobra.Command, flag bool) bool {
	if f := cmd.Flags().Lookup("details"); f != nil && f.Changed {
		return flag
	}
	return config.Get().Output.ShowDetails
}

// renderPlan writes plan in the requested format, falling back to the
// configured default.
func renderPlan(cmd *cobra.Command, plan budget.Plan, format string, details bool) error {
	cfg := config.Get()
	if format == "" {
		format = cfg.Output.DefaultFormat
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(w, plan)
	case "cli", "":
		printPlan(w, plan, cfg.Output.CurrencySymbol, details)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
