package graph

import (
	"sort"
	"strings"
	"testing"
)

func indexOf(t *testing.T, order []string, name string) int {
	t.Helper()
	for i, s := range order {
		if strings.EqualFold(s, name) {
			return i
		}
	}
	t.Fatalf("%q not present in order %v", name, order)
	return -1
}

func TestLearningOrder_FrontendPrereqsRespected(t *testing.T) {
	order := LearningOrder("frontend", []string{"React", "JavaScript", "HTML", "CSS"})

	if len(order) != 4 {
		t.Fatalf("order has %d skills, want 4: %v", len(order), order)
	}

	react := indexOf(t, order, "React")
	if indexOf(t, order, "HTML") >= react {
		t.Errorf("HTML must precede React: %v", order)
	}
	if indexOf(t, order, "JavaScript") >= react {
		t.Errorf("JavaScript must precede React: %v", order)
	}
	if indexOf(t, order, "CSS") >= react {
		t.Errorf("CSS must precede React: %v", order)
	}
	if indexOf(t, order, "HTML") >= indexOf(t, order, "JavaScript") {
		t.Errorf("HTML must precede JavaScript: %v", order)
	}
}

func TestLearningOrder_PrereqOutsideInputAssumedKnown(t *testing.T) {
	// React's prerequisites are absent from the input, so React is
	// eligible on the first pass.
	order := LearningOrder("frontend", []string{"React", "TypeScript"})

	if len(order) != 2 {
		t.Fatalf("got %v", order)
	}
	if order[0] != "React" {
		t.Errorf("React should place first: %v", order)
	}
}

func TestLearningOrder_ExactlyInputSkills(t *testing.T) {
	input := []string{"TypeScript", "React", "CSS", "HTML", "JavaScript", "Git"}
	order := LearningOrder("frontend", input)

	if len(order) != len(input) {
		t.Fatalf("order dropped or duplicated skills: %v", order)
	}

	want := append([]string(nil), input...)
	got := append([]string(nil), order...)
	sort.Strings(want)
	sort.Strings(got)
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("order is not a permutation of input: %v vs %v", input, order)
		}
	}
}

func TestLearningOrder_CycleTerminatesWithAlphabeticalTail(t *testing.T) {
	// An unknown track has no prerequisite data, so nothing blocks; use
	// the fullstack table with a fabricated cyclic pair instead.
	table := trackPrereqs["fullstack"]
	table["alpha-skill"] = []string{"beta-skill"}
	table["beta-skill"] = []string{"alpha-skill"}
	defer func() {
		delete(table, "alpha-skill")
		delete(table, "beta-skill")
	}()

	order := LearningOrder("fullstack", []string{"beta-skill", "alpha-skill"})

	if len(order) != 2 {
		t.Fatalf("cycle dropped or duplicated skills: %v", order)
	}
	if order[0] != "alpha-skill" || order[1] != "beta-skill" {
		t.Fatalf("cyclic remainder must flush alphabetically: %v", order)
	}
}

func TestLearningOrder_PartialCycleKeepsResolvablePrefix(t *testing.T) {
	table := trackPrereqs["fullstack"]
	table["alpha-skill"] = []string{"beta-skill"}
	table["beta-skill"] = []string{"alpha-skill"}
	defer func() {
		delete(table, "alpha-skill")
		delete(table, "beta-skill")
	}()

	order := LearningOrder("fullstack", []string{"beta-skill", "HTML", "alpha-skill"})

	if len(order) != 3 {
		t.Fatalf("got %v", order)
	}
	if order[0] != "HTML" {
		t.Fatalf("resolvable skill must place before the flushed tail: %v", order)
	}
}

func TestLearningOrder_EmptyInput(t *testing.T) {
	order := LearningOrder("frontend", nil)
	if len(order) != 0 {
		t.Fatalf("got %v, want empty", order)
	}
}

func TestSuggestedNext_ReadySkillsFirst(t *testing.T) {
	current := []string{"HTML", "CSS"}
	gaps := []string{"JavaScript", "React", "TypeScript"}

	got := SuggestedNext("frontend", current, gaps, 3)

	if len(got) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	if got[0].Skill != "JavaScript" || got[0].Reason != "all prerequisites met" {
		t.Fatalf("unexpected first suggestion %+v", got[0])
	}
}

func TestSuggestedNext_SingleMissingPrereqNudge(t *testing.T) {
	// TypeScript needs JavaScript only; with JavaScript missing it is
	// still suggested, naming the blocker.
	got := SuggestedNext("frontend", []string{"HTML", "CSS"}, []string{"TypeScript"}, 5)

	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	if got[0].Reason != "blocked by single prerequisite JavaScript" {
		t.Fatalf("unexpected reason %q", got[0].Reason)
	}
}

func TestSuggestedNext_TwoMissingPrereqsSkipped(t *testing.T) {
	// React needs JavaScript, HTML and CSS; with only HTML held, two
	// prerequisites are missing and React is skipped silently.
	got := SuggestedNext("frontend", []string{"HTML"}, []string{"React"}, 5)

	if len(got) != 0 {
		t.Fatalf("expected no suggestions, got %v", got)
	}
}

func TestSuggestedNext_StopsAtCount(t *testing.T) {
	current := []string{"HTML", "CSS", "JavaScript"}
	gaps := []string{"TypeScript", "React", "Build Tools", "Testing"}

	got := SuggestedNext("frontend", current, gaps, 2)

	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(got))
	}
}

func TestSuggestedNext_ZeroCount(t *testing.T) {
	got := SuggestedNext("frontend", []string{"HTML"}, []string{"CSS"}, 0)
	if len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestPrerequisites_UnknownTrackOrSkill(t *testing.T) {
	if p := Prerequisites("devops", "Terraform"); p != nil {
		t.Fatalf("got %v", p)
	}
	if p := Prerequisites("frontend", "HTML"); p != nil {
		t.Fatalf("HTML has no prerequisites, got %v", p)
	}
}
