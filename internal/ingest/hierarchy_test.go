package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
)

func team(slug, parent string) *domain.Team {
	return &domain.Team{Slug: slug, CombinedSlug: "acme/" + slug, ParentSlug: parent}
}

func TestLinkTeamHierarchy(t *testing.T) {
	platform := team("platform", "")
	backend := team("backend", "platform")
	frontend := team("frontend", "platform")
	infra := team("infra", "backend")

	require.NoError(t, LinkTeamHierarchy([]*domain.Team{platform, backend, frontend, infra}))

	assert.True(t, platform.IsRoot())
	assert.Same(t, platform, backend.Parent)
	assert.Same(t, platform, frontend.Parent)
	assert.Same(t, backend, infra.Parent)
	assert.ElementsMatch(t, []*domain.Team{backend, frontend}, platform.Children)
	assert.Equal(t, []*domain.Team{infra}, backend.Children)
}

func TestLinkTeamHierarchyOrderIndependent(t *testing.T) {
	// Children listed before their parents must resolve identically.
	infra := team("infra", "backend")
	backend := team("backend", "platform")
	platform := team("platform", "")

	require.NoError(t, LinkTeamHierarchy([]*domain.Team{infra, backend, platform}))

	assert.Same(t, backend, infra.Parent)
	assert.Same(t, platform, backend.Parent)
	assert.True(t, platform.IsRoot())
}

func TestLinkTeamHierarchyUnknownParentIsRoot(t *testing.T) {
	orphan := team("orphan", "long-gone")

	require.NoError(t, LinkTeamHierarchy([]*domain.Team{orphan}))

	assert.True(t, orphan.IsRoot())
	assert.Empty(t, orphan.Children)
}

func TestLinkTeamHierarchyCycle(t *testing.T) {
	a := team("team-a", "team-b")
	b := team("team-b", "team-c")
	c := team("team-c", "team-a")

	err := LinkTeamHierarchy([]*domain.Team{a, b, c})

	var cycle *HierarchyCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Contains(t, cycle.Slugs, "team-a")
	assert.Contains(t, cycle.Slugs, "team-b")
	assert.Contains(t, cycle.Slugs, "team-c")
}

func TestLinkTeamHierarchySelfParent(t *testing.T) {
	a := team("team-a", "team-a")

	err := LinkTeamHierarchy([]*domain.Team{a})

	var cycle *HierarchyCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Contains(t, cycle.Slugs, "team-a")
}

func TestLinkTeamHierarchyCycleBelowValidTeams(t *testing.T) {
	root := team("root", "")
	child := team("child", "root")
	a := team("loop-a", "loop-b")
	b := team("loop-b", "loop-a")

	err := LinkTeamHierarchy([]*domain.Team{root, child, a, b})

	var cycle *HierarchyCycleError
	require.ErrorAs(t, err, &cycle)
	assert.NotContains(t, cycle.Slugs, "root")
	assert.NotContains(t, cycle.Slugs, "child")
}
