package budget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"filmscope/internal/errors"
)

// FormInput is the raw budget form submission. Every field arrives as text.
type FormInput struct {
	TotalBudget          string `json:"totalBudget"`
	Goal                 string `json:"goal"`
	GrassrootsCities     string `json:"grassrootsCities"`
	GrassrootsScreenings string `json:"grassrootsScreenings"`
}

// ParseForm validates a form submission and converts it to an Input.
// The returned error carries a message suitable for display.
func ParseForm(f FormInput) (Input, error) {
	raw := strings.TrimSpace(f.TotalBudget)
	if raw == "" {
		return Input{}, errors.Input("Please enter a total budget.")
	}
	amount, err := parseAmount(raw)
	if err != nil {
		return Input{}, errors.Input("Total budget must be a number.").WithContext("value", raw)
	}
	if amount.IsNegative() {
		return Input{}, errors.Input("Total budget cannot be negative.").WithContext("value", raw)
	}
	if err := CheckBudget(amount); err != nil {
		return Input{}, errors.Wrap(errors.TypeInput, "Total budget is out of range.", err).WithContext("value", raw)
	}

	in := Input{
		TotalBudget: amount,
		Goal:        ParseGoal(f.Goal),
		Grassroots: GrassrootsParams{
			Cities:            SplitCities(f.GrassrootsCities),
			ScreeningsPerCity: parseScreenings(f.GrassrootsScreenings),
		}.Normalize(),
	}

	if in.Goal == GoalGrassroots && len(in.Grassroots.Cities) == 0 {
		return Input{}, errors.Input("Please list at least one city for the grassroots tour.")
	}
	return in, nil
}

// Coerce converts a form submission without rejecting anything: an
// unparsable, negative or out-of-range budget becomes zero and screenings
// default to 1.
func Coerce(f FormInput) Input {
	amount, err := parseAmount(strings.TrimSpace(f.TotalBudget))
	if err != nil || amount.IsNegative() || CheckBudget(amount) != nil {
		amount = decimal.Zero
	}
	return Input{
		TotalBudget: amount,
		Goal:        ParseGoal(f.Goal),
		Grassroots: GrassrootsParams{
			Cities:            SplitCities(f.GrassrootsCities),
			ScreeningsPerCity: parseScreenings(f.GrassrootsScreenings),
		}.Normalize(),
	}
}

// SplitCities splits a comma-separated city list and normalises it
func SplitCities(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeCities(strings.Split(s, ","))
}

// MaxBudgetDigits bounds the integer part of a budget; MaxBudgetDecimals
// bounds its significant fractional digits.
const (
	MaxBudgetDigits   = 15
	MaxBudgetDecimals = 6
)

// CheckBudget rejects budgets too large or too precise to plan with. It
// inspects the coefficient and exponent only, so inputs such as "1e2000000"
// are rejected without being expanded.
func CheckBudget(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	exp := int64(d.Exponent())
	if int64(d.NumDigits())+exp > MaxBudgetDigits {
		return fmt.Errorf("budget exceeds %d integer digits", MaxBudgetDigits)
	}
	if exp < -MaxBudgetDecimals {
		// Trailing zeros ("1.50000000") are fine; anything past the bound
		// with a huge negative exponent is not worth rescaling.
		if exp < -MaxBudgetDecimals-MaxBudgetDigits || !d.Truncate(MaxBudgetDecimals).Equal(d) {
			return fmt.Errorf("budget has more than %d decimal places", MaxBudgetDecimals)
		}
	}
	return nil
}

// parseAmount accepts plain decimals with an optional leading currency
// sign and thousands separators, e.g. "$25,000.50".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	return decimal.NewFromString(s)
}

func parseScreenings(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
