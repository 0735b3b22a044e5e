package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Per-track static prerequisite tables: skill -> direct prerequisites.
// Keys and membership checks are case-insensitive; values keep their
// display casing. The tables are intended to be DAGs, but nothing here
// assumes they are (see LearningOrder).
var frontendPrereqs = map[string][]string{
	"css":               {"HTML"},
	"javascript":        {"HTML", "CSS"},
	"typescript":        {"JavaScript"},
	"react":             {"JavaScript", "HTML", "CSS"},
	"responsive design": {"CSS"},
	"accessibility":     {"HTML"},
	"build tools":       {"JavaScript"},
	"testing":           {"JavaScript"},
}

var backendPrereqs = map[string][]string{
	"express":         {"Node.js"},
	"rest api design": {"Express"},
	"authentication":  {"REST API Design"},
	"nosql":           {"SQL"},
	"caching":         {"SQL"},
	"message queues":  {"Node.js"},
	"docker":          {"Linux"},
	"testing":         {"Node.js"},
}

var trackPrereqs map[string]map[string][]string

func init() {
	fullstack := make(map[string][]string, len(frontendPrereqs)+len(backendPrereqs))
	for skill, pre := range frontendPrereqs {
		fullstack[skill] = pre
	}
	for skill, pre := range backendPrereqs {
		if _, ok := fullstack[skill]; ok {
			// Shared skill: either half's prerequisites unblock it.
			continue
		}
		fullstack[skill] = pre
	}

	trackPrereqs = map[string]map[string][]string{
		"frontend":  frontendPrereqs,
		"backend":   backendPrereqs,
		"fullstack": fullstack,
	}
}

// Prerequisites returns the direct prerequisites of skill within track.
// Unknown tracks and skills with no entry both yield nil: a skill with
// no prerequisites is always eligible.
func Prerequisites(track, skill string) []string {
	table, ok := trackPrereqs[strings.ToLower(track)]
	if !ok {
		return nil
	}
	return table[strings.ToLower(skill)]
}

// LearningOrder orders exactly the input skills so that any skill whose
// full prerequisite set is contained in the input appears after all of
// its prerequisites. Prerequisites outside the input are assumed
// already known.
//
// The algorithm layers iteratively rather than recursing, so malformed
// graphs cannot blow the stack or spin forever: a pass that places no
// skill means the remainder is a cycle or unresolvable chain, and it is
// flushed in lexicographic order. Ordering within that flushed tail is
// explicitly not guaranteed. Total passes are additionally capped at
// 2x the input size.
func LearningOrder(track string, skillNames []string) []string {
	if len(skillNames) == 0 {
		return []string{}
	}

	inputSet := make(map[string]bool, len(skillNames))
	for _, name := range skillNames {
		inputSet[strings.ToLower(name)] = true
	}

	remaining := make([]string, len(skillNames))
	copy(remaining, skillNames)

	placed := make([]string, 0, len(skillNames))
	placedSet := make(map[string]bool, len(skillNames))

	maxPasses := 2 * len(skillNames)

	for pass := 0; pass < maxPasses && len(remaining) > 0; pass++ {
		var next []string
		movedAny := false

		for _, name := range remaining {
			if eligible(track, name, inputSet, placedSet) {
				placed = append(placed, name)
				placedSet[strings.ToLower(name)] = true
				movedAny = true
			} else {
				next = append(next, name)
			}
		}
		remaining = next

		if !movedAny {
			break
		}
	}

	if len(remaining) > 0 {
		// Cycle or unresolvable chain: flush deterministically rather
		// than dropping skills. Callers rely on the alphabetical tail.
		sort.Strings(remaining)
		placed = append(placed, remaining...)
	}

	return placed
}

func eligible(track, name string, inputSet, placedSet map[string]bool) bool {
	for _, prereq := range Prerequisites(track, name) {
		key := strings.ToLower(prereq)
		if !inputSet[key] {
			continue // outside the requested set, assumed known
		}
		if !placedSet[key] {
			return false
		}
	}
	return true
}

// Suggestion is a next-step recommendation derived from a gap list.
type Suggestion struct {
	Skill  string `json:"skill"`
	Reason string `json:"reason"`
}

// SuggestedNext walks gapSkillNamesInOrder and collects up to count
// suggestions. A gap skill whose direct prerequisites are all held is
// ready to start; one missing prerequisite still earns a nudge naming
// the blocker; two or more missing prerequisites skip the skill
// silently.
func SuggestedNext(track string, currentSkillNames, gapSkillNamesInOrder []string, count int) []Suggestion {
	if count <= 0 {
		return []Suggestion{}
	}

	held := make(map[string]bool, len(currentSkillNames))
	for _, name := range currentSkillNames {
		held[strings.ToLower(name)] = true
	}

	suggestions := make([]Suggestion, 0, count)

	for _, gap := range gapSkillNamesInOrder {
		if len(suggestions) >= count {
			break
		}

		var missing []string
		for _, prereq := range Prerequisites(track, gap) {
			if !held[strings.ToLower(prereq)] {
				missing = append(missing, prereq)
			}
		}

		switch len(missing) {
		case 0:
			suggestions = append(suggestions, Suggestion{
				Skill:  gap,
				Reason: "all prerequisites met",
			})
		case 1:
			suggestions = append(suggestions, Suggestion{
				Skill:  gap,
				Reason: fmt.Sprintf("blocked by single prerequisite %s", missing[0]),
			})
		}
	}

	return suggestions
}
