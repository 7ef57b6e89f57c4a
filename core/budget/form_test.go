package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmscope/internal/errors"
)

func TestParseForm(t *testing.T) {
	tests := []struct {
		name    string
		form    FormInput
		wantErr string
		check   func(t *testing.T, in Input)
	}{
		{
			name:    "empty budget",
			form:    FormInput{TotalBudget: "  ", Goal: "awareness"},
			wantErr: "Please enter a total budget.",
		},
		{
			name:    "non numeric budget",
			form:    FormInput{TotalBudget: "lots", Goal: "awareness"},
			wantErr: "Total budget must be a number.",
		},
		{
			name:    "not a number literal",
			form:    FormInput{TotalBudget: "NaN"},
			wantErr: "Total budget must be a number.",
		},
		{
			name:    "negative budget",
			form:    FormInput{TotalBudget: "-10"},
			wantErr: "Total budget cannot be negative.",
		},
		{
			name:    "huge exponent",
			form:    FormInput{TotalBudget: "1e2000000", Goal: "awareness"},
			wantErr: "Total budget is out of range.",
		},
		{
			name:    "sixteen integer digits",
			form:    FormInput{TotalBudget: "1000000000000000"},
			wantErr: "Total budget is out of range.",
		},
		{
			name:    "tiny negative exponent",
			form:    FormInput{TotalBudget: "1e-2000000"},
			wantErr: "Total budget is out of range.",
		},
		{
			name: "largest accepted budget",
			form: FormInput{TotalBudget: "999,999,999,999,999.50"},
			check: func(t *testing.T, in Input) {
				assert.True(t, dec("999999999999999.5").Equal(in.TotalBudget))
			},
		},
		{
			name: "trailing fractional zeros accepted",
			form: FormInput{TotalBudget: "12.5000000000"},
			check: func(t *testing.T, in Input) {
				assert.True(t, dec("12.5").Equal(in.TotalBudget))
			},
		},
		{
			name:    "grassroots without cities",
			form:    FormInput{TotalBudget: "1000", Goal: "grassroots", GrassrootsCities: " , "},
			wantErr: "Please list at least one city for the grassroots tour.",
		},
		{
			name: "currency formatting accepted",
			form: FormInput{TotalBudget: "$25,000.50", Goal: "conversion"},
			check: func(t *testing.T, in Input) {
				assert.True(t, dec("25000.50").Equal(in.TotalBudget))
				assert.Equal(t, GoalConversion, in.Goal)
			},
		},
		{
			name: "grassroots cities and screenings",
			form: FormInput{TotalBudget: "10000", Goal: "grassroots", GrassrootsCities: "NY, LA, NY", GrassrootsScreenings: "2"},
			check: func(t *testing.T, in Input) {
				assert.Equal(t, []string{"NY", "LA"}, in.Grassroots.Cities)
				assert.Equal(t, 2, in.Grassroots.ScreeningsPerCity)
			},
		},
		{
			name: "invalid screenings default to one",
			form: FormInput{TotalBudget: "10000", Goal: "grassroots", GrassrootsCities: "NY", GrassrootsScreenings: "zero"},
			check: func(t *testing.T, in Input) {
				assert.Equal(t, 1, in.Grassroots.ScreeningsPerCity)
			},
		},
		{
			name: "unknown goal is not an error",
			form: FormInput{TotalBudget: "5000", Goal: "viral"},
			check: func(t *testing.T, in Input) {
				assert.Equal(t, GoalDefault, in.Goal)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseForm(tt.form)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.TypeInput))
				assert.Equal(t, tt.wantErr, errors.UserMessage(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, in)
		})
	}
}

func TestCoerceNeverFails(t *testing.T) {
	in := Coerce(FormInput{TotalBudget: "garbage", Goal: "grassroots", GrassrootsScreenings: "-3"})
	assert.True(t, in.TotalBudget.IsZero())
	assert.Equal(t, GoalGrassroots, in.Goal)
	assert.Equal(t, 1, in.Grassroots.ScreeningsPerCity)
	assert.Empty(t, Allocate(in).Categories)

	in = Coerce(FormInput{TotalBudget: "-5"})
	assert.True(t, in.TotalBudget.IsZero())

	in = Coerce(FormInput{TotalBudget: "1e2000000"})
	assert.True(t, in.TotalBudget.IsZero())
}

func TestCheckBudget(t *testing.T) {
	for _, ok := range []string{"0", "0e-90000", "25000", "1e14", "0.000001", "3.14000000000"} {
		assert.NoError(t, CheckBudget(dec(ok)), ok)
	}
	for _, bad := range []string{"1e15", "1e50000000", "0.0000001", "1e-50000000"} {
		assert.Error(t, CheckBudget(dec(bad)), bad)
	}
}

func TestSplitCities(t *testing.T) {
	assert.Equal(t, []string{}, SplitCities(""))
	assert.Equal(t, []string{"Austin", "Denver"}, SplitCities("Austin,,  Denver , austin"))
}
