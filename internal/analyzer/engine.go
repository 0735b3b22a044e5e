package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillcompass/backend/internal/catalog"
	"github.com/skillcompass/backend/internal/demand"
	"github.com/skillcompass/backend/internal/graph"
	"github.com/skillcompass/backend/internal/metrics"
	"github.com/skillcompass/backend/pkg/logger"
)

// ErrEmptyCatalog marks a track whose skill universe is empty. That is
// a deployment mistake, not a degradable condition, so validation fails
// fast instead of dividing by zero in the coverage math.
var ErrEmptyCatalog = errors.New("track catalog is empty")

const (
	defaultSuggestionCount = 3
	keepSharpMinWeight     = 8
)

// Engine runs the gap pipeline: diff against the catalog, enrich gaps
// with provider evidence through the cache, score and sort, derive the
// learning order and next-step suggestions. The engine holds no mutable
// state of its own; everything per-request is freshly allocated, and
// the only shared resource is the evidence cache inside the sources.
type Engine struct {
	jobSource       demand.Source
	communitySource demand.Source
}

func NewEngine(jobSource, communitySource demand.Source) *Engine {
	return &Engine{
		jobSource:       jobSource,
		communitySource: communitySource,
	}
}

// ValidateOptions tunes one validation call.
type ValidateOptions struct {
	SortStrategy    string
	Credentials     Credentials
	SuggestionCount int
}

// Validate is the core entry point. It always produces a response for a
// well-formed track and skill list, even with every provider down —
// evidence degrades to zero counts, it never aborts the call.
func (e *Engine) Validate(ctx context.Context, track string, userSkills []UserSkill, opts ValidateOptions) (*Result, error) {
	startTime := time.Now()
	validationID := uuid.New().String()

	if opts.SortStrategy == "" {
		opts.SortStrategy = SortImpact
	}
	if !ValidStrategy(opts.SortStrategy) {
		return nil, fmt.Errorf("unknown sort strategy %q", opts.SortStrategy)
	}
	if opts.SuggestionCount <= 0 {
		opts.SuggestionCount = defaultSuggestionCount
	}

	coreSkills, err := catalog.CoreSkills(track)
	if err != nil {
		metrics.ValidationTotal.WithLabelValues(track, "error").Inc()
		return nil, err
	}
	if len(coreSkills) == 0 {
		metrics.ValidationTotal.WithLabelValues(track, "error").Inc()
		return nil, fmt.Errorf("%w: %q", ErrEmptyCatalog, track)
	}

	logger.Info("Processing validation",
		zap.String("validation_id", validationID),
		zap.String("track", track),
		zap.Int("user_skills", len(userSkills)),
		zap.String("sort", opts.SortStrategy),
	)

	gaps := ComputeGaps(track, coreSkills, userSkills)

	// Evidence is fetched once over the full gap set; for fullstack
	// that is the union, so partitioned sections never trigger
	// duplicate lookups.
	e.EnrichWithEvidence(ctx, gaps, track, opts.Credentials)

	// Learning order is derived from the catalog-ordered gap list,
	// before strategy sorting rearranges it.
	gapNames := make([]string, len(gaps))
	for i, g := range gaps {
		gapNames[i] = g.Skill
	}
	learningOrder := graph.LearningOrder(track, gapNames)

	currentNames := make([]string, len(userSkills))
	for i, us := range userSkills {
		currentNames[i] = us.Name
	}
	suggested := graph.SuggestedNext(track, currentNames, learningOrder, opts.SuggestionCount)

	SortGaps(gaps, opts.SortStrategy)

	result := &Result{
		ID:              validationID,
		Track:           track,
		Gaps:            gaps,
		CoveragePercent: Coverage(len(gaps), len(coreSkills)),
		LearningOrder:   learningOrder,
		SuggestedNext:   suggested,
		KeepSharp:       keepSharp(track, userSkills),
		LatencyMS:       int(time.Since(startTime).Milliseconds()),
	}

	if strings.EqualFold(track, catalog.TrackFullstack) {
		result.Sections = partitionBySection(gaps)
	}

	metrics.ValidationDuration.WithLabelValues(track).Observe(time.Since(startTime).Seconds())
	metrics.ValidationTotal.WithLabelValues(track, "success").Inc()
	metrics.GapsPerValidation.Observe(float64(len(gaps)))
	metrics.CoveragePercent.WithLabelValues(track).Observe(result.CoveragePercent)

	logger.Info("Validation processed",
		zap.String("validation_id", validationID),
		zap.Int("gaps", len(gaps)),
		zap.Float64("coverage", result.CoveragePercent),
		zap.Int("latency_ms", result.LatencyMS),
	)

	return result, nil
}

// EnrichWithEvidence fetches both providers' demand for every gap and
// attaches scored evidence in place. All gaps fan out concurrently, and
// within a gap the two provider lookups run concurrently too; a failure
// in one provider never blocks or invalidates the other. Any panic
// escaping an adapter is converted into zero evidence for that gap, so
// a single bad skill cannot fail the batch.
func (e *Engine) EnrichWithEvidence(ctx context.Context, gaps []Gap, track string, creds Credentials) {
	var wg sync.WaitGroup

	for i := range gaps {
		wg.Add(1)
		go func(g *Gap) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Evidence fetch panicked, using zero evidence",
						zap.String("skill", g.Skill),
						zap.Any("panic", r),
					)
					g.Evidence = zeroEvidence(fmt.Sprintf("enrichment panic: %v", r))
				}
			}()

			g.Evidence = e.fetchEvidence(ctx, g.Skill, track, creds)
			metrics.DemandCategory.WithLabelValues(g.Evidence.DemandCategory).Inc()
		}(&gaps[i])
	}

	wg.Wait()
}

func (e *Engine) fetchEvidence(ctx context.Context, skill, track string, creds Credentials) *Evidence {
	var (
		wg        sync.WaitGroup
		job       demand.Result
		community demand.Result
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		job = e.jobSource.Demand(ctx, skill, track, creds.JobBoard)
	}()
	go func() {
		defer wg.Done()
		community = e.communitySource.Demand(ctx, skill, track, creds.Community)
	}()
	wg.Wait()

	combined := CombinedScore(job.Count, community.Count)

	return &Evidence{
		JobPostings:    job,
		Community:      community,
		CombinedScore:  combined,
		DemandCategory: CategorizeDemand(combined),
	}
}

// EvidenceFor fetches scored evidence for a single skill. Used by the
// streaming handler to push gaps as they resolve; the cache makes a
// following Validate over the same skills cheap.
func (e *Engine) EvidenceFor(ctx context.Context, skill, track string, creds Credentials) *Evidence {
	return e.fetchEvidence(ctx, skill, track, creds)
}

func zeroEvidence(errText string) *Evidence {
	now := time.Now()
	degraded := demand.Result{Count: 0, Err: errText, FetchedAt: now}
	return &Evidence{
		JobPostings:    degraded,
		Community:      degraded,
		CombinedScore:  0,
		DemandCategory: DemandLow,
	}
}

// SkillTrend is a thin passthrough to the adapters' monthly series.
func (e *Engine) SkillTrend(ctx context.Context, skill, track string, creds Credentials, months int) (*Trend, error) {
	if !catalog.IsTrack(track) {
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownTrack, track)
	}

	metrics.TrendRequests.Inc()

	var (
		wg        sync.WaitGroup
		job       []demand.TrendPoint
		community []demand.TrendPoint
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		job = e.jobSource.MonthlySeries(ctx, skill, track, creds.JobBoard, months)
	}()
	go func() {
		defer wg.Done()
		community = e.communitySource.MonthlySeries(ctx, skill, track, creds.Community, months)
	}()
	wg.Wait()

	return &Trend{
		Skill:       skill,
		Track:       track,
		JobPostings: job,
		Community:   community,
	}, nil
}

// keepSharp lists the held skills that are high-impact core skills for
// the track: already covered, still worth maintaining.
func keepSharp(track string, userSkills []UserSkill) []KeepSharp {
	out := make([]KeepSharp, 0)
	for _, us := range userSkills {
		s, ok := catalog.Lookup(track, us.Name)
		if !ok || s.Weight < keepSharpMinWeight {
			continue
		}
		out = append(out, KeepSharp{Skill: s.Name, Weight: s.Weight, Category: s.Category})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})

	return out
}

// partitionBySection splits an already-sorted gap list into the three
// fullstack sections. Partitioning a stably sorted slice keeps each
// section sorted by the same strategy.
func partitionBySection(gaps []Gap) map[string][]Gap {
	sections := map[string][]Gap{
		string(catalog.SectionFrontend): {},
		string(catalog.SectionBackend):  {},
		string(catalog.SectionBoth):     {},
	}

	for _, g := range gaps {
		key := string(g.Section)
		if _, ok := sections[key]; !ok {
			continue
		}
		sections[key] = append(sections[key], g)
	}

	return sections
}
