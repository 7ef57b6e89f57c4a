package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// lineItem is one tactical share of a category, in whole percent
type lineItem struct {
	name  string
	share int64
}

var breakdownRules = map[Category][]lineItem{
	CategoryMetaAds: {
		{"Top-of-Funnel", 60},
		{"Mid-Funnel (Retargeting)", 30},
		{"Bottom-Funnel (Conversion)", 10},
	},
	CategoryInfluencer: {
		{"Tier 1 (Large)", 50},
		{"Micro-Influencers", 50},
	},
	CategoryPR: {
		{"Press Release Distribution", 40},
		{"Media Outreach Tools", 30},
		{"Digital Press Kits", 30},
	},
	CategoryContent: {
		{"Video Editing", 70},
		{"Graphic Design", 30},
	},
	CategoryGrassroots: {
		{"Venue Rental", 50},
		{"Local Marketing Materials", 20},
		{"Staffing & Travel", 30},
	},
}

// Allocate computes the spending plan for in.
//
// Negative budgets are treated as zero and an unrecognised goal uses the
// default table. Categories whose amount is zero are omitted, so a zero
// budget yields a plan with no categories.
func Allocate(in Input) Plan {
	total := in.TotalBudget
	if total.IsNegative() {
		total = decimal.Zero
	}

	goal := ParseGoal(in.Goal.String())
	tour := GrassrootsParams{ScreeningsPerCity: 1}
	if goal == GoalGrassroots {
		tour = in.Grassroots.Normalize()
	}

	table := tableFor(goal)
	categories := make([]CategoryAllocation, 0, len(Categories))
	for _, c := range Categories {
		f := table[c]
		amount := total.Mul(f)
		if !amount.IsPositive() {
			continue
		}
		categories = append(categories, CategoryAllocation{
			Category:   c,
			Amount:     amount,
			Percentage: percentString(f.Mul(hundred)),
			Breakdown:  breakdown(c, amount, tour),
		})
	}

	return Plan{
		TotalBudget: total,
		Goal:        goal,
		Categories:  categories,
		Insights:    insightsFor(goal),
	}
}

// breakdown splits amount by the category's rule. The last line item takes
// whatever remains so the items always sum to amount exactly.
func breakdown(c Category, amount decimal.Decimal, tour GrassrootsParams) []SubAllocation {
	rule := breakdownRules[c]
	out := make([]SubAllocation, 0, len(rule))
	remaining := amount
	for i, item := range rule {
		share := decimal.NewFromInt(item.share)
		part := amount.Mul(share).Div(hundred)
		if i == len(rule)-1 {
			part = remaining
		}
		remaining = remaining.Sub(part)

		name := item.name
		if c == CategoryGrassroots && i == 0 {
			name = venueLabel(tour)
		}
		out = append(out, SubAllocation{
			Name:       name,
			Amount:     part,
			Percentage: percentString(share),
		})
	}
	return out
}

// venueLabel describes the tour size. The venue share does not scale with it.
func venueLabel(tour GrassrootsParams) string {
	cities := len(tour.Cities)
	if cities < 1 {
		cities = 1
	}
	screenings := tour.ScreeningsPerCity
	if screenings < 1 {
		screenings = 1
	}
	return fmt.Sprintf("Venue Rental (%s × %s)",
		plural(cities, "city", "cities"),
		plural(screenings, "screening", "screenings"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func percentString(p decimal.Decimal) string {
	return p.Truncate(0).String()
}
