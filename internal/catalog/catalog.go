package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Tracks recognized by the service. Fullstack is the union of the
// frontend and backend tables plus the shared skills, with section
// tags attached.
const (
	TrackFrontend  = "frontend"
	TrackBackend   = "backend"
	TrackFullstack = "fullstack"
)

var ErrUnknownTrack = errors.New("unknown track")

type Section string

const (
	SectionFrontend Section = "frontend"
	SectionBackend  Section = "backend"
	SectionBoth     Section = "both"
)

// Skill is a catalog entry: immutable, defined at process start. Name
// is the case-insensitive unique key within a track; Weight is impact
// on a 1-10 scale; Section is only set on the fullstack track.
type Skill struct {
	Name     string  `json:"name"`
	Weight   int     `json:"weight"`
	Category string  `json:"category"`
	Section  Section `json:"section,omitempty"`
}

var frontendSkills = []Skill{
	{Name: "HTML", Weight: 8, Category: "markup"},
	{Name: "CSS", Weight: 8, Category: "styling"},
	{Name: "JavaScript", Weight: 10, Category: "language"},
	{Name: "TypeScript", Weight: 7, Category: "language"},
	{Name: "React", Weight: 9, Category: "framework"},
	{Name: "Responsive Design", Weight: 6, Category: "styling"},
	{Name: "Accessibility", Weight: 6, Category: "quality"},
	{Name: "Build Tools", Weight: 5, Category: "tooling"},
	{Name: "Testing", Weight: 6, Category: "quality"},
	{Name: "Git", Weight: 7, Category: "tooling"},
}

var backendSkills = []Skill{
	{Name: "Node.js", Weight: 9, Category: "runtime"},
	{Name: "Express", Weight: 8, Category: "framework"},
	{Name: "SQL", Weight: 9, Category: "data"},
	{Name: "NoSQL", Weight: 6, Category: "data"},
	{Name: "REST API Design", Weight: 9, Category: "architecture"},
	{Name: "Authentication", Weight: 7, Category: "security"},
	{Name: "Caching", Weight: 5, Category: "performance"},
	{Name: "Message Queues", Weight: 4, Category: "architecture"},
	{Name: "Docker", Weight: 6, Category: "infrastructure"},
	{Name: "Linux", Weight: 5, Category: "infrastructure"},
	{Name: "Testing", Weight: 6, Category: "quality"},
	{Name: "Git", Weight: 7, Category: "tooling"},
}

// Skills appearing in both halves of the fullstack table keep a single
// entry tagged "both"; everything else carries its half's tag.
var bothSections = map[string]bool{
	"testing": true,
	"git":     true,
}

var (
	tracks  map[string][]Skill
	indexes map[string]map[string]Skill
)

func init() {
	tracks = map[string][]Skill{
		TrackFrontend:  frontendSkills,
		TrackBackend:   backendSkills,
		TrackFullstack: buildFullstack(),
	}

	indexes = make(map[string]map[string]Skill, len(tracks))
	for track, skills := range tracks {
		idx := make(map[string]Skill, len(skills))
		for _, s := range skills {
			idx[strings.ToLower(s.Name)] = s
		}
		indexes[track] = idx
	}
}

func buildFullstack() []Skill {
	merged := make([]Skill, 0, len(frontendSkills)+len(backendSkills))
	seen := make(map[string]bool)

	for _, s := range frontendSkills {
		key := strings.ToLower(s.Name)
		if bothSections[key] {
			s.Section = SectionBoth
		} else {
			s.Section = SectionFrontend
		}
		merged = append(merged, s)
		seen[key] = true
	}

	for _, s := range backendSkills {
		key := strings.ToLower(s.Name)
		if seen[key] {
			continue
		}
		if bothSections[key] {
			s.Section = SectionBoth
		} else {
			s.Section = SectionBackend
		}
		merged = append(merged, s)
	}

	return merged
}

func Tracks() []string {
	return []string{TrackFrontend, TrackBackend, TrackFullstack}
}

func IsTrack(track string) bool {
	_, ok := tracks[strings.ToLower(track)]
	return ok
}

// CoreSkills returns the skill universe for track in catalog order.
// The returned slice is a copy; the tables themselves never mutate.
func CoreSkills(track string) ([]Skill, error) {
	skills, ok := tracks[strings.ToLower(track)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrack, track)
	}
	out := make([]Skill, len(skills))
	copy(out, skills)
	return out, nil
}

// Lookup finds a skill by name within a track, case-insensitively.
func Lookup(track, name string) (Skill, bool) {
	idx, ok := indexes[strings.ToLower(track)]
	if !ok {
		return Skill{}, false
	}
	s, ok := idx[strings.ToLower(name)]
	return s, ok
}
