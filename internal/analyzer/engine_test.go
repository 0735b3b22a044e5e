package analyzer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillcompass/backend/internal/catalog"
	"github.com/skillcompass/backend/internal/demand"
)

// fakeSource is an in-memory demand.Source with scripted counts.
type fakeSource struct {
	name   string
	counts map[string]int
	down   bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Demand(_ context.Context, skill, track, _ string) demand.Result {
	f.mu.Lock()
	f.calls = append(f.calls, strings.ToLower(skill))
	f.mu.Unlock()

	if f.down {
		return demand.Result{Count: 0, Err: "provider unreachable", FetchedAt: time.Now()}
	}
	return demand.Result{Count: f.counts[strings.ToLower(skill)], FetchedAt: time.Now()}
}

func (f *fakeSource) MonthlySeries(_ context.Context, skill, _, _ string, months int) []demand.TrendPoint {
	points := make([]demand.TrendPoint, 0, months)
	for i := 0; i < months; i++ {
		points = append(points, demand.TrendPoint{
			Month: time.Now().AddDate(0, i-months+1, 0).Format("2006-01"),
			Count: f.counts[strings.ToLower(skill)],
		})
	}
	return points
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newFakeEngine(jobCounts, communityCounts map[string]int) (*Engine, *fakeSource, *fakeSource) {
	job := &fakeSource{name: "jobs", counts: jobCounts}
	community := &fakeSource{name: "community", counts: communityCounts}
	return NewEngine(job, community), job, community
}

func TestValidate_EndToEndFrontend(t *testing.T) {
	engine, _, _ := newFakeEngine(
		map[string]int{"javascript": 2000, "react": 800},
		map[string]int{"javascript": 1000, "react": 400},
	)

	userSkills := []UserSkill{
		{Name: "HTML", Proficiency: ProficiencyStrong},
		{Name: "CSS", Proficiency: ProficiencyStrong},
	}

	result, err := engine.Validate(context.Background(), "frontend", userSkills, ValidateOptions{})
	require.NoError(t, err)

	core, _ := catalog.CoreSkills("frontend")
	assert.Len(t, result.Gaps, len(core)-2)
	assert.Equal(t, Coverage(len(result.Gaps), len(core)), result.CoveragePercent)
	assert.NotEmpty(t, result.ID)

	var js *Gap
	for i := range result.Gaps {
		if result.Gaps[i].Skill == "JavaScript" {
			js = &result.Gaps[i]
		}
	}
	require.NotNil(t, js, "JavaScript must be reported as a gap")
	assert.Equal(t, 10, js.Weight)
	require.NotNil(t, js.Evidence)
	assert.Equal(t, 2500.0, js.Evidence.CombinedScore)
	assert.Equal(t, DemandHigh, js.Evidence.DemandCategory)

	// Default sort is impact: the weight-10 gap leads.
	assert.Equal(t, "JavaScript", result.Gaps[0].Skill)

	// JavaScript is unblocked (HTML and CSS held) and first in learning
	// order, so it must also be the first suggestion.
	require.NotEmpty(t, result.SuggestedNext)
	assert.Equal(t, "JavaScript", result.SuggestedNext[0].Skill)

	// Learning order covers exactly the gaps.
	assert.Len(t, result.LearningOrder, len(result.Gaps))
}

func TestValidate_UnknownTrack(t *testing.T) {
	engine, _, _ := newFakeEngine(nil, nil)

	_, err := engine.Validate(context.Background(), "mobile", nil, ValidateOptions{})
	require.ErrorIs(t, err, catalog.ErrUnknownTrack)
}

func TestValidate_UnknownSortStrategy(t *testing.T) {
	engine, _, _ := newFakeEngine(nil, nil)

	_, err := engine.Validate(context.Background(), "frontend", nil, ValidateOptions{SortStrategy: "alphabetical"})
	require.Error(t, err)
}

func TestValidate_AllProvidersDownStillResponds(t *testing.T) {
	job := &fakeSource{name: "jobs", down: true}
	community := &fakeSource{name: "community", down: true}
	engine := NewEngine(job, community)

	result, err := engine.Validate(context.Background(), "backend", nil, ValidateOptions{SortStrategy: SortDemand})
	require.NoError(t, err, "provider outage must not fail validation")

	for _, g := range result.Gaps {
		require.NotNil(t, g.Evidence, "gap %s missing evidence", g.Skill)
		assert.Equal(t, 0, g.Evidence.JobPostings.Count)
		assert.NotEmpty(t, g.Evidence.JobPostings.Err)
		assert.NotEmpty(t, g.Evidence.Community.Err)
		assert.Equal(t, DemandLow, g.Evidence.DemandCategory)
	}
}

func TestValidate_OneProviderFailureDegradesOnlyThatProvider(t *testing.T) {
	job := &fakeSource{name: "jobs", down: true}
	community := &fakeSource{name: "community", counts: map[string]int{"javascript": 600}}
	engine := NewEngine(job, community)

	userSkills := []UserSkill{}
	for _, s := range mustCore(t, "frontend") {
		if s.Name != "JavaScript" {
			userSkills = append(userSkills, UserSkill{Name: s.Name, Proficiency: ProficiencyStrong})
		}
	}

	result, err := engine.Validate(context.Background(), "frontend", userSkills, ValidateOptions{})
	require.NoError(t, err)
	require.Len(t, result.Gaps, 1)

	ev := result.Gaps[0].Evidence
	require.NotNil(t, ev)
	assert.NotEmpty(t, ev.JobPostings.Err)
	assert.Empty(t, ev.Community.Err)
	assert.Equal(t, 600, ev.Community.Count)
	assert.Equal(t, 300.0, ev.CombinedScore)
	assert.Equal(t, DemandMedium, ev.DemandCategory)
}

func TestValidate_FullstackSectionsPartitionedEvidenceFetchedOnce(t *testing.T) {
	engine, job, community := newFakeEngine(map[string]int{}, map[string]int{})

	result, err := engine.Validate(context.Background(), "fullstack", []UserSkill{
		{Name: "HTML", Proficiency: ProficiencyStrong},
	}, ValidateOptions{})
	require.NoError(t, err)

	require.NotNil(t, result.Sections)
	for _, sec := range []string{"frontend", "backend", "both"} {
		_, ok := result.Sections[sec]
		assert.True(t, ok, "missing section %q", sec)
	}

	total := 0
	for _, gaps := range result.Sections {
		total += len(gaps)
	}
	assert.Equal(t, len(result.Gaps), total, "partition must cover all gaps")

	// One fetch per gap per provider across the whole union.
	assert.Equal(t, len(result.Gaps), job.callCount())
	assert.Equal(t, len(result.Gaps), community.callCount())
}

func TestValidate_NonFullstackHasNoSections(t *testing.T) {
	engine, _, _ := newFakeEngine(nil, nil)

	result, err := engine.Validate(context.Background(), "frontend", nil, ValidateOptions{})
	require.NoError(t, err)
	assert.Nil(t, result.Sections)
}

func TestValidate_KeepSharp(t *testing.T) {
	engine, _, _ := newFakeEngine(nil, nil)

	result, err := engine.Validate(context.Background(), "frontend", []UserSkill{
		{Name: "javascript", Proficiency: ProficiencyStrong},
		{Name: "HTML", Proficiency: ProficiencyIntermediate},
		{Name: "Build Tools", Proficiency: ProficiencyStrong}, // weight 5, below keep-sharp bar
	}, ValidateOptions{})
	require.NoError(t, err)

	require.Len(t, result.KeepSharp, 2)
	assert.Equal(t, "JavaScript", result.KeepSharp[0].Skill)
	assert.Equal(t, "HTML", result.KeepSharp[1].Skill)
}

func TestSkillTrend_Passthrough(t *testing.T) {
	engine, _, _ := newFakeEngine(
		map[string]int{"react": 700},
		map[string]int{"react": 300},
	)

	trend, err := engine.SkillTrend(context.Background(), "React", "frontend", Credentials{}, 6)
	require.NoError(t, err)

	assert.Equal(t, "React", trend.Skill)
	assert.Len(t, trend.JobPostings, 6)
	assert.Len(t, trend.Community, 6)
	assert.Equal(t, 700, trend.JobPostings[0].Count)
}

func TestSkillTrend_UnknownTrack(t *testing.T) {
	engine, _, _ := newFakeEngine(nil, nil)

	_, err := engine.SkillTrend(context.Background(), "React", "mobile", Credentials{}, 6)
	require.ErrorIs(t, err, catalog.ErrUnknownTrack)
}

func mustCore(t *testing.T, track string) []catalog.Skill {
	t.Helper()
	core, err := catalog.CoreSkills(track)
	require.NoError(t, err)
	return core
}
