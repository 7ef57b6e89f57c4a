// Package audience builds target-audience analyses for a film using a
// generative text model.
package audience

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"filmscope/internal/errors"
	"filmscope/internal/logging"
)

// Genres offered by the film data form
var Genres = []string{"Action", "Horror", "Drama", "Comedy", "Documentary", "Sci-Fi", "Thriller"}

// NeedHelpDemographic asks the model to identify the audience
const NeedHelpDemographic = "I need help identifying"

// Demographics offered by the film data form
var Demographics = []string{
	"Teenagers (13-17)",
	"Young Adults (18-24)",
	"Adults (25-34)",
	"Middle-Aged (35-54)",
	"Seniors (55+)",
	NeedHelpDemographic,
}

// FilmData is the film metadata the analysis is based on
type FilmData struct {
	Title          string `json:"title"`
	Genre          string `json:"genre"`
	Budget         string `json:"budget"`
	Logline        string `json:"logline"`
	UniqueElements string `json:"uniqueElements"`
	Demographic    string `json:"demographic"`
}

// NewFilmData returns the form's initial state
func NewFilmData() FilmData {
	return FilmData{
		Genre:       "Horror",
		Demographic: "Young Adults (18-24)",
	}
}

// Validate reports whether the film can be analysed
func (f FilmData) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return errors.Input("Film title is required.")
	}
	return nil
}

// NeedsAutoAnalysis reports whether the user asked the model to pick the
// demographic and there is enough data to do so.
func NeedsAutoAnalysis(f FilmData) bool {
	return f.Demographic == NeedHelpDemographic && strings.TrimSpace(f.Title) != ""
}

// MetaTargeting holds Meta Ads audience targeting suggestions
type MetaTargeting struct {
	Interests []string `json:"interests"`
	Behaviors []string `json:"behaviors"`
}

// Analysis is the model's structured response
type Analysis struct {
	Confidence        float64        `json:"confidence"`
	TargetDemographic string         `json:"targetDemographic"`
	GenreInsights     string         `json:"genreInsights"`
	ContentPillars    []string       `json:"contentPillars"`
	MetaTargeting     *MetaTargeting `json:"metaTargeting,omitempty"`
}

// InterestsCSV joins targeting interests for pasting into an ads manager
func (a *Analysis) InterestsCSV() string {
	if a.MetaTargeting == nil {
		return ""
	}
	return strings.Join(a.MetaTargeting.Interests, ", ")
}

// BehaviorsCSV joins targeting behaviors for pasting into an ads manager
func (a *Analysis) BehaviorsCSV() string {
	if a.MetaTargeting == nil {
		return ""
	}
	return strings.Join(a.MetaTargeting.Behaviors, ", ")
}

// BuildPrompt renders the analysis request for f
func BuildPrompt(f FilmData) string {
	var b strings.Builder
	b.WriteString("Analyze the target audience for the following independent film and return the analysis as a JSON object.\n\n")
	b.WriteString("Film Data:\n")
	fmt.Fprintf(&b, "- Title: %s\n", f.Title)
	fmt.Fprintf(&b, "- Genre: %s\n", f.Genre)
	fmt.Fprintf(&b, "- Budget: %s\n", f.Budget)
	fmt.Fprintf(&b, "- Logline: %s\n", f.Logline)
	fmt.Fprintf(&b, "- Unique Elements: %s\n", f.UniqueElements)
	if NeedsAutoAnalysis(f) {
		b.WriteString("- Stated Demographic: not chosen. Identify the most likely audience from the details above.\n\n")
	} else {
		fmt.Fprintf(&b, "- Stated Demographic: %s\n\n", f.Demographic)
	}
	b.WriteString("Provide the following in your JSON response:\n")
	b.WriteString(`1. "confidence": A number (0-100) representing your confidence in this analysis.` + "\n")
	b.WriteString(`2. "targetDemographic": A string identifying the most likely target demographic.` + "\n")
	b.WriteString(`3. "genreInsights": A string with 2-3 sentences of insights specific to marketing this genre.` + "\n")
	b.WriteString(`4. "contentPillars": An array of 4 strings representing key content themes.` + "\n")
	b.WriteString(`5. "metaTargeting": An object with "interests" (array of 10-15 strings) and "behaviors" (array of 5-7 strings).` + "\n")
	return b.String()
}

// ParseAnalysis decodes a model response. Markdown code fences around the
// JSON are tolerated and confidence is clamped to [0, 100].
func ParseAnalysis(raw []byte) (*Analysis, error) {
	body := stripFences(raw)
	if len(body) == 0 {
		return nil, errors.Parsing("No content received from the AI model.", nil)
	}

	var a Analysis
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, errors.Parsing("The AI response was not valid JSON.", err)
	}

	switch {
	case a.Confidence < 0:
		a.Confidence = 0
	case a.Confidence > 100:
		a.Confidence = 100
	}
	if a.ContentPillars == nil {
		a.ContentPillars = []string{}
	}
	return &a, nil
}

func stripFences(raw []byte) []byte {
	body := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}
	body = bytes.TrimPrefix(body, []byte("```"))
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
	return bytes.TrimSpace(body)
}

// Generator produces text for a prompt. When wantJSON is set the model is
// asked to respond with a JSON document.
type Generator interface {
	Generate(ctx context.Context, prompt string, wantJSON bool) (string, error)
}

// Analyzer runs audience analyses against a Generator
type Analyzer struct {
	gen    Generator
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(gen Generator) *Analyzer {
	return &Analyzer{
		gen:    gen,
		logger: logging.Named("audience"),
	}
}

// Analyze validates f, prompts the model and parses its answer
func (a *Analyzer) Analyze(ctx context.Context, f FilmData) (*Analysis, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if a.gen == nil {
		return nil, errors.Config("Gemini API key is not configured.")
	}

	a.logger.Debug("requesting audience analysis",
		zap.String("title", f.Title),
		zap.String("genre", f.Genre),
		zap.Bool("auto_demographic", NeedsAutoAnalysis(f)))

	text, err := a.gen.Generate(ctx, BuildPrompt(f), true)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Network("Failed to get analysis from AI.", err)
	}

	analysis, err := ParseAnalysis([]byte(text))
	if err != nil {
		a.logger.Warn("unparseable analysis response", zap.Error(err))
		return nil, err
	}
	return analysis, nil
}
