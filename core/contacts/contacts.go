// Package contacts imports and exports the press and influencer contact
// list as CSV or XLSX.
package contacts

import (
	"context"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"

	"filmscope/internal/errors"
)

// Contact is one press or influencer contact
type Contact struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Outlet    string `json:"outlet,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Followers int    `json:"followers,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Store persists the contact list. ReplaceContacts swaps the whole list
// atomically.
type Store interface {
	ReplaceContacts(ctx context.Context, contacts []Contact) error
	ListContacts(ctx context.Context) ([]Contact, error)
}

// Columns is the canonical header, in export order
var Columns = []string{"name", "email", "role", "outlet", "platform", "followers", "notes"}

// RowError describes a rejected input row. Row is the 1-based record
// number with the header as row 1.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ImportResult summarizes an import
type ImportResult struct {
	Contacts []Contact  `json:"contacts"`
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors"`
}

// AllRejected reports whether the file had rows but none of them parsed.
// Such an import must not replace the stored list.
func (r *ImportResult) AllRejected() bool {
	return r.Imported == 0 && len(r.Errors) > 0
}

// columnIndex maps canonical column names to record positions
type columnIndex map[string]int

var headerAliases = map[string]string{
	"full name":      "name",
	"e-mail":         "email",
	"title":          "role",
	"publication":    "outlet",
	"channel":        "platform",
	"audience":       "followers",
	"follower":       "followers",
	"follower count": "followers",
	"note":           "notes",
}

func indexHeader(header []string) (columnIndex, error) {
	idx := columnIndex{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := headerAliases[key]; ok {
			key = alias
		}
		if _, seen := idx[key]; seen {
			continue
		}
		idx[key] = i
	}
	if _, ok := idx["name"]; !ok {
		return nil, errors.Input("The contact file must have a \"name\" column.")
	}
	return idx, nil
}

func (idx columnIndex) get(record []string, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseRecord converts one data row. The returned error message is shown
// to the user verbatim.
func (idx columnIndex) parseRecord(record []string) (Contact, error) {
	c := Contact{
		Name:     idx.get(record, "name"),
		Email:    idx.get(record, "email"),
		Role:     idx.get(record, "role"),
		Outlet:   idx.get(record, "outlet"),
		Platform: idx.get(record, "platform"),
		Notes:    idx.get(record, "notes"),
	}
	if c.Name == "" {
		return c, fmt.Errorf("name is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return c, fmt.Errorf("invalid email %q", c.Email)
		}
	}
	if raw := idx.get(record, "followers"); raw != "" {
		n, err := parseFollowers(raw)
		if err != nil {
			return c, fmt.Errorf("invalid follower count %q", raw)
		}
		c.Followers = n
	}
	return c, nil
}

// maxFollowers caps follower counts so they fit every storage backend.
const maxFollowers = math.MaxInt32

// parseFollowers accepts plain integers, thousands separators and k/m
// suffixes ("12,400", "12.4k", "1.2M").
func parseFollowers(raw string) (int, error) {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1e3, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1e6, strings.TrimSuffix(s, "m")
	}
	if mult == 1 {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			if n < 0 || n > maxFollowers {
				return 0, fmt.Errorf("follower count out of range: %s", raw)
			}
			return int(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a count: %s", raw)
	}
	v := math.Round(f * mult)
	if v < 0 || v > maxFollowers {
		return 0, fmt.Errorf("follower count out of range: %s", raw)
	}
	return int(v), nil
}

// record renders c in Columns order
func record(c Contact) []string {
	followers := ""
	if c.Followers > 0 {
		followers = strconv.Itoa(c.Followers)
	}
	return []string{c.Name, c.Email, c.Role, c.Outlet, c.Platform, followers, c.Notes}
}

// importRows runs the shared header and row handling for both formats.
// next reports ok=false once the input is exhausted.
func importRows(header []string, next func() ([]string, int, bool, error)) (*ImportResult, error) {
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Contacts: []Contact{}, Errors: []RowError{}}
	for {
		rec, row, ok, err := next()
		if !ok {
			break
		}
		if err != nil {
			result.Total++
			result.Errors = append(result.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}
		if blank(rec) {
			continue
		}
		result.Total++
		c, err := idx.parseRecord(rec)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}
		result.Contacts = append(result.Contacts, c)
	}
	result.Imported = len(result.Contacts)
	return result, nil
}
