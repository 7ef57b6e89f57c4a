// Package planfile decodes HCL documents that describe budget plans.
//
//	plan "festival-run" {
//	  budget = 25000
//	  goal   = "grassroots"
//	  grassroots {
//	    cities              = ["NY", "LA"]
//	    screenings_per_city = 2
//	  }
//	}
package planfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"filmscope/core/budget"
	"filmscope/internal/errors"
)

// NamedInput is one plan block decoded into an allocation request
type NamedInput struct {
	// Name is the block label
	Name string

	// Input is ready to pass to budget.Allocate
	Input budget.Input

	// File and Line locate the block for error reporting
	File string
	Line int
}

var documentSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "plan", LabelNames: []string{"name"}},
	},
}

type planBody struct {
	Budget     hcl.Expression   `hcl:"budget"`
	Goal       *string          `hcl:"goal,optional"`
	Grassroots *grassrootsBlock `hcl:"grassroots,block"`
}

type grassrootsBlock struct {
	Cities            []string `hcl:"cities,optional"`
	ScreeningsPerCity *int     `hcl:"screenings_per_city,optional"`
}

// Load reads and parses a plan file from disk
func Load(path string) ([]NamedInput, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to read plan file %s", path)
	}
	return Parse(src, path)
}

// Parse decodes every plan block in src
func Parse(src []byte, filename string) ([]NamedInput, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagnosticsError(diags)
	}

	content, diags := file.Body.Content(documentSchema)
	if diags.HasErrors() {
		return nil, diagnosticsError(diags)
	}

	seen := make(map[string]int, len(content.Blocks))
	out := make([]NamedInput, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		name := block.Labels[0]
		line := block.DefRange.Start.Line
		if prev, dup := seen[name]; dup {
			return nil, errors.Newf(errors.TypeParsing,
				"%s:%d: duplicate plan %q (first defined on line %d)", filename, line, name, prev).
				WithContext("file", filename).
				WithContext("line", line)
		}
		seen[name] = line

		var p planBody
		if diags := gohcl.DecodeBody(block.Body, nil, &p); diags.HasErrors() {
			return nil, diagnosticsError(diags)
		}

		amount, err := evalBudget(p.Budget)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "%s:%d: plan %q has an invalid budget", filename, line, name).
				WithContext("file", filename).
				WithContext("line", line)
		}

		in := budget.Input{TotalBudget: amount}
		if p.Goal != nil {
			in.Goal = budget.ParseGoal(*p.Goal)
		}
		if p.Grassroots != nil {
			params := budget.GrassrootsParams{Cities: p.Grassroots.Cities}
			if p.Grassroots.ScreeningsPerCity != nil {
				params.ScreeningsPerCity = *p.Grassroots.ScreeningsPerCity
			}
			in.Grassroots = params.Normalize()
		} else {
			in.Grassroots = budget.GrassrootsParams{}.Normalize()
		}

		out = append(out, NamedInput{
			Name:  name,
			Input: in,
			File:  filename,
			Line:  line,
		})
	}
	return out, nil
}

// evalBudget accepts a number or a numeric string
func evalBudget(expr hcl.Expression) (decimal.Decimal, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return decimal.Zero, diagnosticsError(diags)
	}
	if val.IsNull() || !val.IsKnown() {
		return decimal.Zero, fmt.Errorf("budget must be set")
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return decimal.Zero, fmt.Errorf("budget must be a number: %w", err)
	}
	s := strings.TrimSpace(strings.TrimPrefix(str.AsString(), "$"))
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("budget cannot be negative")
	}
	if err := budget.CheckBudget(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func diagnosticsError(diags hcl.Diagnostics) error {
	msgs := make([]string, 0, len(diags))
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		loc := ""
		if d.Subject != nil {
			loc = fmt.Sprintf("%s:%d: ", d.Subject.Filename, d.Subject.Start.Line)
		}
		msgs = append(msgs, loc+d.Summary+": "+d.Detail)
	}
	return errors.Parsing(strings.Join(msgs, "; "), diags)
}
