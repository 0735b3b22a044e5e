package analyzer

import (
	"github.com/skillcompass/backend/internal/catalog"
	"github.com/skillcompass/backend/internal/demand"
	"github.com/skillcompass/backend/internal/graph"
)

// Proficiency levels a caller may declare for a held skill.
const (
	ProficiencyBeginner     = "beginner"
	ProficiencyIntermediate = "intermediate"
	ProficiencyStrong       = "strong"
)

func ValidProficiency(p string) bool {
	switch p {
	case ProficiencyBeginner, ProficiencyIntermediate, ProficiencyStrong:
		return true
	}
	return false
}

// UserSkill is a declared skill, supplied per request and never
// persisted by the analyzer.
type UserSkill struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

// Demand categories derived from the combined score.
const (
	DemandHigh   = "high"
	DemandMedium = "medium"
	DemandLow    = "low"
)

// Combined-score thresholds. The category is a pure function of the
// combined score and this table; it is never stored independently.
const (
	highDemandThreshold   = 1000
	mediumDemandThreshold = 300
)

// communityWeight discounts the community count against job postings
// in the combined score.
const communityWeight = 0.5

// Evidence is the external popularity signal attached to a gap:
// per-provider counts (possibly degraded, with the error inline) plus
// the derived combined score and category.
type Evidence struct {
	JobPostings    demand.Result `json:"job_postings"`
	Community      demand.Result `json:"community"`
	CombinedScore  float64       `json:"combined_score"`
	DemandCategory string        `json:"demand_category"`
}

// Gap is a core skill the user has not declared.
type Gap struct {
	Skill    string          `json:"skill"`
	Weight   int             `json:"weight"`
	Category string          `json:"category"`
	Section  catalog.Section `json:"section,omitempty"`
	Evidence *Evidence       `json:"evidence,omitempty"`
}

// Sort strategies for the gap list.
const (
	SortImpact        = "impact"
	SortDemand        = "demand"
	SortLearningOrder = "learning_order"
	SortQuickWins     = "quick_wins"
)

func ValidStrategy(s string) bool {
	switch s {
	case SortImpact, SortDemand, SortLearningOrder, SortQuickWins:
		return true
	}
	return false
}

// Credentials carries optional per-request provider credentials.
type Credentials struct {
	JobBoard  string `json:"job_board,omitempty"`
	Community string `json:"community,omitempty"`
}

// KeepSharp is a held core skill worth maintaining.
type KeepSharp struct {
	Skill    string `json:"skill"`
	Weight   int    `json:"weight"`
	Category string `json:"category"`
}

// Result is a full validation response.
type Result struct {
	ID              string             `json:"id"`
	Track           string             `json:"track"`
	Gaps            []Gap              `json:"gaps"`
	CoveragePercent float64            `json:"coverage_percent"`
	LearningOrder   []string           `json:"learning_order"`
	SuggestedNext   []graph.Suggestion `json:"suggested_next"`
	KeepSharp       []KeepSharp        `json:"keep_sharp"`
	Sections        map[string][]Gap   `json:"sections,omitempty"` // fullstack only
	LatencyMS       int                `json:"latency_ms"`
}

// Trend is the monthly demand series for one skill, per provider.
type Trend struct {
	Skill       string              `json:"skill"`
	Track       string              `json:"track"`
	JobPostings []demand.TrendPoint `json:"job_postings"`
	Community   []demand.TrendPoint `json:"community"`
}
