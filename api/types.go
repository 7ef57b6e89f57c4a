// Package api - API types for the FilmScope HTTP surface
package api

import (
	"filmscope/core/audience"
	"filmscope/core/budget"
	"filmscope/core/campaign"
	"filmscope/core/contacts"
)

// ResponseMetadata contains reproducibility metadata for computed results
type ResponseMetadata struct {
	InputHash     string `json:"input_hash"`
	EngineVersion string `json:"engine_version"`
	DurationMs    int64  `json:"duration_ms"`
}

// AllocateRequest is the input to POST /allocate. It is the raw budget
// form: every field is text and validated server-side.
type AllocateRequest = budget.FormInput

// AllocateResponse is the output of POST /allocate
type AllocateResponse struct {
	Plan     budget.Plan       `json:"plan"`
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// TablesResponse is the output of GET /allocation-tables
type TablesResponse struct {
	Goals  []budget.Goal                          `json:"goals"`
	Tables map[budget.Goal]budget.AllocationTable `json:"tables"`
}

// AnalyzeRequest is the input to POST /analyze
type AnalyzeRequest = audience.FilmData

// AnalyzeResponse is the output of POST /analyze
type AnalyzeResponse struct {
	Analysis *audience.Analysis `json:"analysis"`

	// Interests and Behaviors are comma-joined for pasting into an ads manager
	Interests string `json:"interests"`
	Behaviors string `json:"behaviors"`
}

// CampaignListResponse is the output of GET /campaigns
type CampaignListResponse struct {
	Campaigns []campaign.Campaign `json:"campaigns"`
	Count     int                 `json:"count"`

	// Notice is set when sample data is shown instead of stored campaigns
	Notice string `json:"notice,omitempty"`
}

// CampaignResponse is the output of campaign mutations
type CampaignResponse struct {
	Campaign *campaign.Campaign `json:"campaign,omitempty"`
	Message  string             `json:"message"`
}

// PlatformsResponse is the output of GET /campaigns/platforms
type PlatformsResponse struct {
	Platforms map[campaign.Platform]campaign.PlatformInfo `json:"platforms"`
	Types     []campaign.Type                             `json:"types"`
	Statuses  []campaign.Status                           `json:"statuses"`
}

// ContactImportResponse is the output of POST /contacts/import
type ContactImportResponse struct {
	Total    int                 `json:"total"`
	Imported int                 `json:"imported"`
	Errors   []contacts.RowError `json:"errors"`
	Message  string              `json:"message,omitempty"`
}

// ErrorBody is the error envelope returned by every endpoint
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
