package campaign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmscope/internal/errors"
)

func TestNewTemplate(t *testing.T) {
	c := New()
	assert.Equal(t, PlatformInstagram, c.Platform)
	assert.Equal(t, TypeVisual, c.Type)
	assert.Equal(t, StatusDraft, c.Status)
	assert.Empty(t, c.ID)
}

func TestValidate(t *testing.T) {
	valid := Campaign{Title: "Teaser", Content: "Watch now", Platform: PlatformTikTok, Type: TypeVideo, Status: StatusActive}

	tests := []struct {
		name    string
		mutate  func(c *Campaign)
		wantMsg string
	}{
		{"valid", func(c *Campaign) {}, ""},
		{"missing title", func(c *Campaign) { c.Title = " " }, "Title and Content are required."},
		{"missing content", func(c *Campaign) { c.Content = "" }, "Title and Content are required."},
		{"unknown platform", func(c *Campaign) { c.Platform = "myspace" }, `Unknown platform "myspace".`},
		{"unknown type", func(c *Campaign) { c.Type = "Podcast" }, `Unknown campaign type "Podcast".`},
		{"unknown status", func(c *Campaign) { c.Status = "Archived" }, `Unknown campaign status "Archived".`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput))
			assert.Equal(t, tt.wantMsg, errors.UserMessage(err))
		})
	}
}

func TestNormalize(t *testing.T) {
	c := Campaign{Title: "  Poster ", Content: " Reveal\n", Platform: " YouTube "}
	c.Normalize()

	assert.Equal(t, "Poster", c.Title)
	assert.Equal(t, "Reveal", c.Content)
	assert.Equal(t, PlatformYouTube, c.Platform)
	assert.Equal(t, TypeVisual, c.Type)
	assert.Equal(t, StatusDraft, c.Status)
}

func TestPlatformInfo(t *testing.T) {
	assert.Equal(t, "X (Twitter)", PlatformTwitter.Info().Name)
	assert.Equal(t, "❓", Platform("myspace").Info().Icon)
	for _, p := range Platforms {
		assert.True(t, p.Valid(), p)
	}
}

func TestSummarize(t *testing.T) {
	stats := Summarize(Samples())
	assert.Equal(t, Stats{Total: 2, Active: 1, Scheduled: 1}, stats)
	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cs := []Campaign{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "c", CreatedAt: base},
	}
	SortNewestFirst(cs)
	assert.Equal(t, []string{"b", "c", "a"}, []string{cs[0].ID, cs[1].ID, cs[2].ID})
}

func TestFilter(t *testing.T) {
	cs := []Campaign{
		{ID: "1", Platform: PlatformYouTube, Status: StatusActive},
		{ID: "2", Platform: PlatformInstagram, Status: StatusDraft},
		{ID: "3", Platform: PlatformYouTube, Status: StatusDraft},
	}

	f := Filter{Platform: PlatformYouTube}
	var matched []Campaign
	for _, c := range cs {
		if f.Match(c) {
			matched = append(matched, c)
		}
	}
	assert.Len(t, matched, 2)

	assert.Len(t, Filter{Limit: 2}.Page(cs), 2)
	assert.Equal(t, "3", Filter{Offset: 2}.Page(cs)[0].ID)
	assert.Empty(t, Filter{Offset: 5}.Page(cs))
}
