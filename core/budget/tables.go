package budget

import "github.com/shopspring/decimal"

func fraction(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	defaultTable = AllocationTable{
		CategoryMetaAds:    fraction("0.30"),
		CategoryInfluencer: fraction("0.25"),
		CategoryPR:         fraction("0.20"),
		CategoryContent:    fraction("0.15"),
		CategoryGrassroots: fraction("0.10"),
	}

	awarenessTable = AllocationTable{
		CategoryMetaAds:    fraction("0.50"),
		CategoryInfluencer: fraction("0.20"),
		CategoryPR:         fraction("0.15"),
		CategoryContent:    fraction("0.10"),
		CategoryGrassroots: fraction("0.05"),
	}

	engagementTable = AllocationTable{
		CategoryMetaAds:    fraction("0.25"),
		CategoryInfluencer: fraction("0.35"),
		CategoryPR:         fraction("0.10"),
		CategoryContent:    fraction("0.25"),
		CategoryGrassroots: fraction("0.05"),
	}

	conversionTable = AllocationTable{
		CategoryMetaAds:    fraction("0.60"),
		CategoryInfluencer: fraction("0.20"),
		CategoryPR:         fraction("0.10"),
		CategoryContent:    fraction("0.05"),
		CategoryGrassroots: fraction("0.05"),
	}

	grassrootsTable = AllocationTable{
		CategoryMetaAds:    fraction("0.10"),
		CategoryInfluencer: fraction("0.10"),
		CategoryPR:         fraction("0.10"),
		CategoryContent:    fraction("0.10"),
		CategoryGrassroots: fraction("0.60"),
	}
)

func tableFor(g Goal) AllocationTable {
	switch g {
	case GoalAwareness:
		return awarenessTable
	case GoalEngagement:
		return engagementTable
	case GoalConversion:
		return conversionTable
	case GoalGrassroots:
		return grassrootsTable
	case GoalDefault:
		return defaultTable
	default:
		return defaultTable
	}
}

// TableFor returns a copy of the allocation table for a goal
func TableFor(g Goal) AllocationTable {
	src := tableFor(g)
	out := make(AllocationTable, len(src))
	for c, f := range src {
		out[c] = f
	}
	return out
}

// Tables returns a copy of every allocation table keyed by goal
func Tables() map[Goal]AllocationTable {
	out := make(map[Goal]AllocationTable, len(Goals))
	for _, g := range Goals {
		out[g] = TableFor(g)
	}
	return out
}

var insights = map[Goal][]string{
	GoalDefault: {
		"A balanced split keeps every channel warm while you learn which one converts.",
		"Revisit the allocation after the first two weeks of spend data.",
	},
	GoalAwareness: {
		"Broad top-of-funnel reach on Meta drives most of the awareness budget.",
		"Pair paid reach with trailer and poster drops to build recognition.",
	},
	GoalEngagement: {
		"Influencers and native content carry engagement goals; favour creators with active comment sections.",
		"Plan behind-the-scenes and cast content to keep conversations going.",
	},
	GoalConversion: {
		"Conversion spend concentrates on Meta retargeting toward ticket or streaming pages.",
		"Make sure tracking pixels are installed before launching conversion campaigns.",
	},
	GoalGrassroots: {
		"Most of the budget funds in-person screenings; book venues early for better rates.",
		"Use local press and community partners in each tour city.",
	},
}

func insightsFor(g Goal) []string {
	src := insights[g]
	if len(src) == 0 {
		src = insights[GoalDefault]
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
