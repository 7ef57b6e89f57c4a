// Package cmd - analyze command
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"filmscope/adapters/gemini"
	"filmscope/core/audience"
	"filmscope/internal/config"
	"filmscope/internal/errors"
)

var (
	film          = audience.NewFilmData()
	analyzeFormat string
)

// analyzeCmd asks the model who the film's audience is
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a film's target audience with Gemini",
	Long: `Describe a film and ask the Gemini model for its target audience,
genre insights, content pillars and Meta Ads targeting suggestions.

Requires GEMINI_API_KEY (or gemini.api_key in the config file).

Examples:
  filmscope analyze --title "The Hollow" --genre Horror --logline "A town that forgets"
  filmscope analyze --title "Low Tide" --demographic "` + audience.NeedHelpDemographic + `"`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&film.Title, "title", "t", "", "film title")
	analyzeCmd.Flags().StringVarP(&film.Genre, "genre", "g", film.Genre, "film genre ("+strings.Join(audience.Genres, ", ")+")")
	analyzeCmd.Flags().StringVar(&film.Budget, "budget", "", "production budget range")
	analyzeCmd.Flags().StringVarP(&film.Logline, "logline", "l", "", "one-sentence logline")
	analyzeCmd.Flags().StringVar(&film.UniqueElements, "unique", "", "what sets the film apart")
	analyzeCmd.Flags().StringVar(&film.Demographic, "demographic", film.Demographic, "target demographic, or \""+audience.NeedHelpDemographic+"\"")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "output format (cli, json)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := film.Validate(); err != nil {
		return userError(err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var gen audience.Generator
	client, err := gemini.New(ctx, config.Get().Gemini, nil)
	switch {
	case err == nil:
		gen = client
	case !errors.IsType(err, errors.TypeConfig):
		return userError(err)
	}

	if audience.NeedsAutoAnalysis(film) {
		fmt.Fprintln(cmd.ErrOrStderr(), "No demographic chosen; asking Gemini to identify one...")
	}
	analysis, err := audience.NewAnalyzer(gen).Analyze(ctx, film)
	if err != nil {
		return userError(err)
	}

	format := analyzeFormat
	if format == "" {
		format = config.Get().Output.DefaultFormat
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), analysis)
	}
	printAnalysis(cmd.OutOrStdout(), film.Title, analysis)
	return nil
}

func printAnalysis(w io.Writer, title string, a *audience.Analysis) {
	fmt.Fprintf(w, "Audience analysis: %s (confidence %.0f%%)\n", title, a.Confidence)
	fmt.Fprintln(w, strings.Repeat("─", boxWidth))

	fmt.Fprintf(w, "\nTarget demographic\n  %s\n", a.TargetDemographic)
	fmt.Fprintf(w, "\nGenre insights\n  %s\n", a.GenreInsights)

	if len(a.ContentPillars) > 0 {
		fmt.Fprintln(w, "\nContent pillars")
		for _, p := range a.ContentPillars {
			fmt.Fprintf(w, "  • %s\n", p)
		}
	}

	if a.MetaTargeting != nil {
		fmt.Fprintln(w, "\nMeta Ads targeting")
		fmt.Fprintf(w, "  Interests: %s\n", a.InterestsCSV())
		fmt.Fprintf(w, "  Behaviors: %s\n", a.BehaviorsCSV())
	}
}
