package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillcompass/backend/internal/catalog"
)

func TestComputeGaps_UnionCoversUniverse(t *testing.T) {
	for _, track := range catalog.Tracks() {
		core, err := catalog.CoreSkills(track)
		require.NoError(t, err)

		user := []UserSkill{
			{Name: strings.ToUpper(core[0].Name), Proficiency: ProficiencyStrong},
			{Name: strings.ToLower(core[2].Name), Proficiency: ProficiencyBeginner},
		}

		gaps := ComputeGaps(track, core, user)

		// Gaps plus held skills must cover the universe exactly once,
		// case-insensitively.
		seen := make(map[string]bool)
		for _, g := range gaps {
			key := strings.ToLower(g.Skill)
			assert.False(t, seen[key], "duplicate gap %q in %s", g.Skill, track)
			seen[key] = true
		}
		for _, us := range user {
			seen[strings.ToLower(us.Name)] = true
		}

		assert.Equal(t, len(core), len(seen), "track %s", track)
		for _, s := range core {
			assert.True(t, seen[strings.ToLower(s.Name)], "missing %q in %s", s.Name, track)
		}
	}
}

func TestComputeGaps_WeightsFromCatalog(t *testing.T) {
	core, err := catalog.CoreSkills("frontend")
	require.NoError(t, err)

	gaps := ComputeGaps("frontend", core, []UserSkill{{Name: "html", Proficiency: ProficiencyStrong}})

	var js *Gap
	for i := range gaps {
		if gaps[i].Skill == "JavaScript" {
			js = &gaps[i]
		}
		if gaps[i].Skill == "HTML" {
			t.Fatal("held skill HTML must not be a gap")
		}
	}
	require.NotNil(t, js, "JavaScript must be a gap")
	assert.Equal(t, 10, js.Weight)
}

func TestCombinedScore(t *testing.T) {
	assert.Equal(t, 1250.0, CombinedScore(1000, 500))
	assert.Equal(t, 0.0, CombinedScore(0, 0))
	assert.Equal(t, 0.5, CombinedScore(0, 1))
}

func TestCategorizeDemand_ExhaustivePartition(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, DemandLow},
		{299.9, DemandLow},
		{300, DemandMedium},
		{999.5, DemandMedium},
		{1000, DemandHigh},
		{250000, DemandHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeDemand(tt.score), "score %v", tt.score)
	}
}

func evidenced(skill string, weight, job, community int) Gap {
	combined := CombinedScore(job, community)
	return Gap{
		Skill:  skill,
		Weight: weight,
		Evidence: &Evidence{
			CombinedScore:  combined,
			DemandCategory: CategorizeDemand(combined),
		},
	}
}

func TestSortGaps_Impact(t *testing.T) {
	gaps := []Gap{
		{Skill: "a", Weight: 5},
		{Skill: "b", Weight: 9},
		{Skill: "c", Weight: 5},
		{Skill: "d", Weight: 7},
	}

	SortGaps(gaps, SortImpact)

	assert.Equal(t, []string{"b", "d", "a", "c"}, skillNames(gaps))
}

func TestSortGaps_Demand(t *testing.T) {
	gaps := []Gap{
		evidenced("a", 5, 100, 0),
		evidenced("b", 5, 900, 200), // 1000
		evidenced("c", 5, 100, 0),   // tie with a, must stay after a
	}

	SortGaps(gaps, SortDemand)

	assert.Equal(t, []string{"b", "a", "c"}, skillNames(gaps))
}

func TestSortGaps_QuickWins_NoDivisionByZero(t *testing.T) {
	gaps := []Gap{
		evidenced("heavy", 9, 1000, 0),  // 1000/10 = 100
		evidenced("zero", 0, 400, 0),    // 400/1 = 400
		evidenced("light", 3, 1000, 0),  // 1000/4 = 250
	}

	SortGaps(gaps, SortQuickWins)

	assert.Equal(t, []string{"zero", "light", "heavy"}, skillNames(gaps))
}

func TestSortGaps_LearningOrderKeepsInputOrder(t *testing.T) {
	gaps := []Gap{
		{Skill: "x", Weight: 1},
		{Skill: "y", Weight: 10},
		{Skill: "z", Weight: 5},
	}

	SortGaps(gaps, SortLearningOrder)

	assert.Equal(t, []string{"x", "y", "z"}, skillNames(gaps))
}

func TestSortGaps_MissingEvidenceSortsAsZero(t *testing.T) {
	gaps := []Gap{
		{Skill: "bare", Weight: 5},
		evidenced("rich", 5, 500, 0),
	}

	SortGaps(gaps, SortDemand)

	assert.Equal(t, []string{"rich", "bare"}, skillNames(gaps))
}

func TestCoverage_OneDecimal(t *testing.T) {
	assert.Equal(t, 20.0, Coverage(8, 10))
	assert.Equal(t, 66.7, Coverage(4, 12))
	assert.Equal(t, 100.0, Coverage(0, 10))
	assert.Equal(t, 0.0, Coverage(10, 10))
}

func skillNames(gaps []Gap) []string {
	names := make([]string, len(gaps))
	for i, g := range gaps {
		names[i] = g.Skill
	}
	return names
}
