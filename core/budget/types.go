// Package budget splits a marketing budget across fixed spending categories.
//
// A goal selects one of five allocation tables. Each category's share is then
// divided into tactical line items by a fixed per-category rule. Allocation is
// pure: no I/O, no shared state, safe to call from any number of goroutines.
package budget

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Goal is the marketing objective that selects an allocation table
type Goal int

const (
	// GoalDefault is the balanced split used for unrecognised goals
	GoalDefault Goal = iota
	GoalAwareness
	GoalEngagement
	GoalConversion
	GoalGrassroots
)

// Goals lists every goal in table order
var Goals = []Goal{GoalDefault, GoalAwareness, GoalEngagement, GoalConversion, GoalGrassroots}

// String returns the goal's wire name
func (g Goal) String() string {
	switch g {
	case GoalAwareness:
		return "awareness"
	case GoalEngagement:
		return "engagement"
	case GoalConversion:
		return "conversion"
	case GoalGrassroots:
		return "grassroots"
	default:
		return "default"
	}
}

// ParseGoal maps a goal name to a Goal. Anything unrecognised,
// including the empty string, is GoalDefault.
func ParseGoal(s string) Goal {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "awareness":
		return GoalAwareness
	case "engagement":
		return GoalEngagement
	case "conversion":
		return GoalConversion
	case "grassroots":
		return GoalGrassroots
	default:
		return GoalDefault
	}
}

// MarshalText implements encoding.TextMarshaler
func (g Goal) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (g *Goal) UnmarshalText(text []byte) error {
	*g = ParseGoal(string(text))
	return nil
}

// Category is one of the five fixed spending buckets
type Category string

const (
	CategoryMetaAds    Category = "Meta Ads"
	CategoryInfluencer Category = "Influencer Marketing"
	CategoryPR         Category = "Public Relations"
	CategoryContent    Category = "Content Creation"
	CategoryGrassroots Category = "Grassroots Tour"
)

// Categories is the fixed output order
var Categories = []Category{
	CategoryMetaAds,
	CategoryInfluencer,
	CategoryPR,
	CategoryContent,
	CategoryGrassroots,
}

// AllocationTable maps each category to its fraction of the total budget
type AllocationTable map[Category]decimal.Decimal

// Sum returns the total of all fractions
func (t AllocationTable) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, f := range t {
		sum = sum.Add(f)
	}
	return sum
}

// MarshalJSON renders fractions as plain numbers in category order
func (t AllocationTable) MarshalJSON() ([]byte, error) {
	type entry struct {
		Category Category `json:"category"`
		Fraction float64  `json:"fraction"`
	}
	out := make([]entry, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, entry{Category: c, Fraction: t[c].InexactFloat64()})
	}
	return json.Marshal(out)
}

// GrassrootsParams describes an in-person screening tour
type GrassrootsParams struct {
	// Cities visited, deduplicated in first-seen order
	Cities []string `json:"cities,omitempty"`

	// ScreeningsPerCity is at least 1 once normalised
	ScreeningsPerCity int `json:"screenings_per_city,omitempty"`
}

// Normalize trims and deduplicates cities and clamps screenings to at least 1
func (p GrassrootsParams) Normalize() GrassrootsParams {
	screenings := p.ScreeningsPerCity
	if screenings < 1 {
		screenings = 1
	}
	return GrassrootsParams{
		Cities:            NormalizeCities(p.Cities),
		ScreeningsPerCity: screenings,
	}
}

// NormalizeCities trims names, drops blanks and removes duplicates while
// preserving first-occurrence order. Comparison is case-insensitive.
func NormalizeCities(cities []string) []string {
	seen := make(map[string]struct{}, len(cities))
	out := make([]string, 0, len(cities))
	for _, c := range cities {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Input is a single allocation request
type Input struct {
	// TotalBudget is the amount to split (currency-agnostic)
	TotalBudget decimal.Decimal `json:"total_budget"`

	// Goal selects the allocation table
	Goal Goal `json:"goal"`

	// Grassroots is only consulted when Goal is GoalGrassroots
	Grassroots GrassrootsParams `json:"grassroots"`
}

// Normalize clears what Allocate ignores: negative budgets become zero,
// unknown goals become GoalDefault and tour parameters are dropped for
// every goal but GoalGrassroots. Inputs that yield the same plan
// normalize to equal values.
func (in Input) Normalize() Input {
	if in.TotalBudget.IsNegative() {
		in.TotalBudget = decimal.Zero
	}
	in.Goal = ParseGoal(in.Goal.String())
	if in.Goal == GoalGrassroots {
		in.Grassroots = in.Grassroots.Normalize()
	} else {
		in.Grassroots = GrassrootsParams{}
	}
	return in
}

// SubAllocation is one tactical line item within a category
type SubAllocation struct {
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage string          `json:"percentage"`
}

// CategoryAllocation is the share assigned to one category
type CategoryAllocation struct {
	Category   Category        `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage string          `json:"percentage"`
	Breakdown  []SubAllocation `json:"breakdown"`
}

// Plan is the computed allocation. It is never persisted.
type Plan struct {
	// TotalBudget is the normalised input budget
	TotalBudget decimal.Decimal `json:"total_budget"`

	// Goal is the goal whose table was applied
	Goal Goal `json:"goal"`

	// Categories with a non-zero amount, in fixed category order
	Categories []CategoryAllocation `json:"categories"`

	// Insights is advisory text for the selected goal
	Insights []string `json:"insights,omitempty"`
}

// Total returns the sum of all category amounts
func (p Plan) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, c := range p.Categories {
		sum = sum.Add(c.Amount)
	}
	return sum
}

// Find returns the allocation for a category, if present
func (p Plan) Find(c Category) (CategoryAllocation, bool) {
	for _, a := range p.Categories {
		if a.Category == c {
			return a, true
		}
	}
	return CategoryAllocation{}, false
}
