package ingest

import (
	"fmt"
	"strings"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
)

// HierarchyCycleError indicates team parent links form a cycle.
type HierarchyCycleError struct {
	Slugs []string
}

func (e *HierarchyCycleError) Error() string {
	return fmt.Sprintf("team hierarchy cycle: %s", strings.Join(e.Slugs, " -> "))
}

// LinkTeamHierarchy resolves each team's declared parent slug into parent
// and child references.
//
// Two passes: first an index from slug to team (parents may appear later
// in the input than their children), then resolution. A parent slug with
// no matching team leaves the child a root. Parent chains are walked
// iteratively with a visit map, so cyclic input fails with
// HierarchyCycleError instead of recursing.
func LinkTeamHierarchy(teams []*domain.Team) error {
	bySlug := make(map[string]*domain.Team, len(teams))
	for _, team := range teams {
		if _, ok := bySlug[team.Slug]; ok {
			// Duplicate slug within one org traversal: first-seen wins.
			continue
		}
		bySlug[team.Slug] = team
	}

	for _, team := range teams {
		if team.ParentSlug == "" {
			continue
		}
		parent, ok := bySlug[team.ParentSlug]
		if !ok {
			continue
		}
		team.Parent = parent
		parent.Children = append(parent.Children, team)
	}

	return detectCycles(teams)
}

const (
	unvisited = iota
	visiting
	visited
)

func detectCycles(teams []*domain.Team) error {
	state := make(map[string]int, len(teams))

	for _, team := range teams {
		var chain []string
		t := team
		for t != nil && state[t.Slug] != visited {
			if state[t.Slug] == visiting {
				return &HierarchyCycleError{Slugs: cycleFrom(chain, t.Slug)}
			}
			state[t.Slug] = visiting
			chain = append(chain, t.Slug)
			t = t.Parent
		}
		for _, slug := range chain {
			state[slug] = visited
		}
	}
	return nil
}

// cycleFrom trims the walked chain to the members of the cycle, starting
// at the revisited slug.
func cycleFrom(chain []string, start string) []string {
	for i, slug := range chain {
		if slug == start {
			return append(chain[i:], start)
		}
	}
	return append(chain, start)
}
