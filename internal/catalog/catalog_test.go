package catalog

import (
	"errors"
	"testing"
)

func TestCoreSkills_UnknownTrack(t *testing.T) {
	_, err := CoreSkills("devops")
	if !errors.Is(err, ErrUnknownTrack) {
		t.Fatalf("expected ErrUnknownTrack, got %v", err)
	}
}

func TestCoreSkills_TrackCaseInsensitive(t *testing.T) {
	lower, err := CoreSkills("frontend")
	if err != nil {
		t.Fatalf("CoreSkills: %v", err)
	}
	mixed, err := CoreSkills("FrontEnd")
	if err != nil {
		t.Fatalf("CoreSkills mixed case: %v", err)
	}
	if len(lower) != len(mixed) {
		t.Fatalf("case changed the universe: %d vs %d", len(lower), len(mixed))
	}
}

func TestCoreSkills_WeightsInRange(t *testing.T) {
	for _, track := range Tracks() {
		skills, err := CoreSkills(track)
		if err != nil {
			t.Fatalf("CoreSkills(%s): %v", track, err)
		}
		if len(skills) == 0 {
			t.Fatalf("track %s has an empty catalog", track)
		}
		for _, s := range skills {
			if s.Weight < 1 || s.Weight > 10 {
				t.Errorf("%s/%s weight %d out of range", track, s.Name, s.Weight)
			}
		}
	}
}

func TestCoreSkills_NoDuplicateNames(t *testing.T) {
	for _, track := range Tracks() {
		skills, _ := CoreSkills(track)
		seen := make(map[string]bool)
		for _, s := range skills {
			key := s.Name
			if seen[key] {
				t.Errorf("track %s has duplicate skill %q", track, s.Name)
			}
			seen[key] = true
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	s, ok := Lookup("frontend", "javascript")
	if !ok {
		t.Fatal("expected lookup hit for javascript")
	}
	if s.Name != "JavaScript" || s.Weight != 10 {
		t.Fatalf("unexpected skill %+v", s)
	}
}

func TestFullstack_SectionsAssigned(t *testing.T) {
	skills, err := CoreSkills(TrackFullstack)
	if err != nil {
		t.Fatalf("CoreSkills: %v", err)
	}

	sections := make(map[Section]int)
	for _, s := range skills {
		if s.Section == "" {
			t.Errorf("fullstack skill %q has no section", s.Name)
		}
		sections[s.Section]++
	}

	for _, sec := range []Section{SectionFrontend, SectionBackend, SectionBoth} {
		if sections[sec] == 0 {
			t.Errorf("no fullstack skills tagged %q", sec)
		}
	}
}

func TestFullstack_SharedSkillsNotDuplicated(t *testing.T) {
	skills, _ := CoreSkills(TrackFullstack)
	count := 0
	for _, s := range skills {
		if s.Name == "Git" {
			count++
			if s.Section != SectionBoth {
				t.Errorf("Git should be tagged both, got %q", s.Section)
			}
		}
	}
	if count != 1 {
		t.Fatalf("Git appears %d times in fullstack, want 1", count)
	}
}

func TestNonFullstackTracksHaveNoSections(t *testing.T) {
	for _, track := range []string{TrackFrontend, TrackBackend} {
		skills, _ := CoreSkills(track)
		for _, s := range skills {
			if s.Section != "" {
				t.Errorf("%s/%s carries section %q", track, s.Name, s.Section)
			}
		}
	}
}
