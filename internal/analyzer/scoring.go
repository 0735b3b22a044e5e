package analyzer

import (
	"math"
	"sort"
	"strings"

	"github.com/skillcompass/backend/internal/catalog"
)

// ComputeGaps diffs the core-skill universe against the user's declared
// skills, case-insensitively. Each gap carries its catalog weight; a
// skill somehow absent from the catalog index gets weight 0 rather than
// an error. Gaps come back in catalog order.
func ComputeGaps(track string, coreSkills []catalog.Skill, userSkills []UserSkill) []Gap {
	held := make(map[string]bool, len(userSkills))
	for _, us := range userSkills {
		held[strings.ToLower(us.Name)] = true
	}

	gaps := make([]Gap, 0, len(coreSkills))
	for _, core := range coreSkills {
		if held[strings.ToLower(core.Name)] {
			continue
		}

		weight := 0
		category := ""
		if s, ok := catalog.Lookup(track, core.Name); ok {
			weight = s.Weight
			category = s.Category
		}

		gaps = append(gaps, Gap{
			Skill:    core.Name,
			Weight:   weight,
			Category: category,
			Section:  core.Section,
		})
	}

	return gaps
}

// CombinedScore is the demand ranking signal: full weight on job
// postings, half weight on community activity.
func CombinedScore(jobCount, communityCount int) float64 {
	return float64(jobCount) + communityWeight*float64(communityCount)
}

// CategorizeDemand partitions the score space exhaustively: high at or
// above 1000, medium at or above 300, low below that.
func CategorizeDemand(combinedScore float64) string {
	switch {
	case combinedScore >= highDemandThreshold:
		return DemandHigh
	case combinedScore >= mediumDemandThreshold:
		return DemandMedium
	default:
		return DemandLow
	}
}

// SortGaps orders gaps by strategy in place. All sorts are stable, so
// ties preserve catalog order. learning_order leaves the input order
// untouched; the actual ordering is produced by the prerequisite graph
// and applied downstream.
func SortGaps(gaps []Gap, strategy string) {
	switch strategy {
	case SortImpact:
		sort.SliceStable(gaps, func(i, j int) bool {
			return gaps[i].Weight > gaps[j].Weight
		})
	case SortDemand:
		sort.SliceStable(gaps, func(i, j int) bool {
			return combinedOf(gaps[i]) > combinedOf(gaps[j])
		})
	case SortQuickWins:
		sort.SliceStable(gaps, func(i, j int) bool {
			return quickWinScore(gaps[i]) > quickWinScore(gaps[j])
		})
	case SortLearningOrder:
	}
}

func combinedOf(g Gap) float64 {
	if g.Evidence == nil {
		return 0
	}
	return g.Evidence.CombinedScore
}

// quickWinScore rewards high external demand relative to difficulty.
// The +1 keeps weight-0 gaps (defensive catalog misses) from dividing
// by zero.
func quickWinScore(g Gap) float64 {
	return combinedOf(g) / float64(g.Weight+1)
}

// Coverage returns (1 - gaps/core) x 100 rounded to one decimal. The
// caller guarantees coreSkillCount > 0; a zero universe is a
// configuration error rejected before this point.
func Coverage(gapCount, coreSkillCount int) float64 {
	pct := (1 - float64(gapCount)/float64(coreSkillCount)) * 100
	return math.Round(pct*10) / 10
}
