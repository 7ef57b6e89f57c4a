// Package cmd - terminal output helpers
package cmd

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"filmscope/core/budget"
	"filmscope/internal/errors"
)

const boxWidth = 73

func boxLine(w io.Writer, left, right string) {
	fmt.Fprintln(w, left+strings.Repeat("─", boxWidth)+right)
}

func boxTitle(w io.Writer, title string) {
	pad := boxWidth - utf8.RuneCountInString(title)
	fmt.Fprintf(w, "│%s%s%s│\n", strings.Repeat(" ", pad/2), title, strings.Repeat(" ", pad-pad/2))
}

// printPlan renders a plan as a box-drawn table
func printPlan(w io.Writer, plan budget.Plan, symbol string, details bool) {
	boxLine(w, "┌", "┐")
	boxTitle(w, "BUDGET ALLOCATION: "+strings.ToUpper(plan.Goal.String()))
	boxLine(w, "├", "┤")

	if len(plan.Categories) == 0 {
		fmt.Fprintf(w, "│ %-71s │\n", "Nothing to allocate.")
	}
	for _, c := range plan.Categories {
		fmt.Fprintf(w, "│ %-46s %18s %5s │\n",
			truncate(string(c.Category), 46),
			formatMoney(symbol, c.Amount),
			c.Percentage+"%")

		if details {
			for _, sub := range c.Breakdown {
				fmt.Fprintf(w, "│   └─ %-41s %18s %5s │\n",
					truncate(sub.Name, 41),
					formatMoney(symbol, sub.Amount),
					sub.Percentage+"%")
			}
		}
	}

	boxLine(w, "├", "┤")
	fmt.Fprintf(w, "│ %-46s %18s %5s │\n", "TOTAL", formatMoney(symbol, plan.Total()), "")
	boxLine(w, "└", "┘")

	if len(plan.Insights) > 0 {
		fmt.Fprintln(w)
		for _, insight := range plan.Insights {
			fmt.Fprintf(w, "• %s\n", insight)
		}
	}
}

// formatMoney renders d with two decimals and thousands separators
func formatMoney(symbol string, d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + symbol + b.String() + frac
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// userError strips the error type tag for terminal output
func userError(err error) error {
	e, ok := errors.As(err)
	if !ok {
		return err
	}
	if e.Cause != nil && !e.Is(errors.TypeNetwork) && !e.Is(errors.TypeConfig) {
		return fmt.Errorf("%s: %v", e.Message, e.Cause)
	}
	return stderrors.New(e.Message)
}
