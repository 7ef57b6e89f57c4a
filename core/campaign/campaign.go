// Package campaign models social media campaigns for a film release.
package campaign

import (
	"sort"
	"strings"
	"time"

	"filmscope/internal/errors"
)

// Platform is a social network a campaign runs on
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformSnapchat  Platform = "snapchat"
)

// PlatformInfo is the display metadata for a platform
type PlatformInfo struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var platforms = map[Platform]PlatformInfo{
	PlatformInstagram: {Name: "Instagram", Icon: "📷"},
	PlatformTikTok:    {Name: "TikTok", Icon: "🎵"},
	PlatformYouTube:   {Name: "YouTube", Icon: "📺"},
	PlatformFacebook:  {Name: "Facebook", Icon: "👥"},
	PlatformTwitter:   {Name: "X (Twitter)", Icon: "🐦"},
	PlatformSnapchat:  {Name: "Snapchat", Icon: "👻"},
}

// Platforms lists the supported platforms in display order
var Platforms = []Platform{
	PlatformInstagram,
	PlatformTikTok,
	PlatformYouTube,
	PlatformFacebook,
	PlatformTwitter,
	PlatformSnapchat,
}

// Info returns display metadata. Unknown platforms get a question mark icon.
func (p Platform) Info() PlatformInfo {
	if info, ok := platforms[p]; ok {
		return info
	}
	return PlatformInfo{Name: string(p), Icon: "❓"}
}

// Valid reports whether p is a supported platform
func (p Platform) Valid() bool {
	_, ok := platforms[p]
	return ok
}

// Type is the kind of content a campaign publishes
type Type string

const (
	TypeVisual    Type = "Visual"
	TypeVideo     Type = "Video"
	TypeText      Type = "Text"
	TypeCommunity Type = "Community"
)

// Types lists the supported content types
var Types = []Type{TypeVisual, TypeVideo, TypeText, TypeCommunity}

// Status is a campaign's lifecycle state
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusScheduled Status = "Scheduled"
	StatusActive    Status = "Active"
)

// Statuses lists the supported statuses
var Statuses = []Status{StatusDraft, StatusScheduled, StatusActive}

// Campaign is a single piece of planned marketing content
type Campaign struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Platform  Platform  `json:"platform"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns the template used for a fresh campaign
func New() Campaign {
	return Campaign{
		Platform: PlatformInstagram,
		Type:     TypeVisual,
		Status:   StatusDraft,
	}
}

// Normalize trims text fields and fills in template defaults for empty
// enum fields.
func (c *Campaign) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Content = strings.TrimSpace(c.Content)
	c.Platform = Platform(strings.ToLower(strings.TrimSpace(string(c.Platform))))

	def := New()
	if c.Platform == "" {
		c.Platform = def.Platform
	}
	if c.Type == "" {
		c.Type = def.Type
	}
	if c.Status == "" {
		c.Status = def.Status
	}
}

// Validate checks required fields and enum values
func (c Campaign) Validate() error {
	if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Content) == "" {
		return errors.Input("Title and Content are required.")
	}
	if !c.Platform.Valid() {
		return errors.Newf(errors.TypeInput, "Unknown platform %q.", c.Platform)
	}
	if !validType(c.Type) {
		return errors.Newf(errors.TypeInput, "Unknown campaign type %q.", c.Type)
	}
	if !validStatus(c.Status) {
		return errors.Newf(errors.TypeInput, "Unknown campaign status %q.", c.Status)
	}
	return nil
}

func validType(t Type) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

func validStatus(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Stats are the dashboard counters
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Scheduled int `json:"scheduled"`
	Drafts    int `json:"drafts"`
}

// Summarize counts campaigns by status
func Summarize(campaigns []Campaign) Stats {
	s := Stats{Total: len(campaigns)}
	for _, c := range campaigns {
		switch c.Status {
		case StatusActive:
			s.Active++
		case StatusScheduled:
			s.Scheduled++
		case StatusDraft:
			s.Drafts++
		}
	}
	return s
}

// SortNewestFirst orders campaigns by creation time, newest first. Ties
// break on ID so the order is stable across backends.
func SortNewestFirst(campaigns []Campaign) {
	sort.SliceStable(campaigns, func(i, j int) bool {
		if !campaigns[i].CreatedAt.Equal(campaigns[j].CreatedAt) {
			return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
		}
		return campaigns[i].ID > campaigns[j].ID
	})
}

// Samples are shown when no datastore is configured
func Samples() []Campaign {
	return []Campaign{
		{ID: "1", Title: "Sample Teaser Trailer", Platform: PlatformYouTube, Type: TypeVideo, Status: StatusActive},
		{ID: "2", Title: "Sample Poster Reveal", Platform: PlatformInstagram, Type: TypeVisual, Status: StatusScheduled},
	}
}

// Filter narrows a campaign listing
type Filter struct {
	Platform Platform
	Status   Status
	Limit    int
	Offset   int
}

// Match reports whether c passes the platform and status filters
func (f Filter) Match(c Campaign) bool {
	if f.Platform != "" && c.Platform != f.Platform {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return true
}

// Page applies offset and limit to an already filtered, ordered slice
func (f Filter) Page(campaigns []Campaign) []Campaign {
	if f.Offset > 0 {
		if f.Offset >= len(campaigns) {
			return []Campaign{}
		}
		campaigns = campaigns[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(campaigns) {
		campaigns = campaigns[:f.Limit]
	}
	return campaigns
}
