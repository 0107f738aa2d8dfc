package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
)

func user(login string) *domain.User {
	return &domain.User{Login: login, Name: "Name of " + login}
}

func TestMergeMembership(t *testing.T) {
	alice := user("alice")
	bob := user("bob")
	teams := []*domain.Team{
		{Slug: "backend", Members: []string{"alice", "bob"}},
		{Slug: "platform", Members: []string{"alice"}},
	}

	merged := MergeMembership([]*domain.User{alice, bob}, teams)

	require.Len(t, merged, 2)
	assert.Equal(t, []string{"backend", "platform"}, alice.MemberOf)
	assert.Equal(t, []string{"backend"}, bob.MemberOf)
}

func TestMergeMembershipIdempotent(t *testing.T) {
	alice := user("alice")
	teams := []*domain.Team{
		{Slug: "backend", Members: []string{"alice", "alice"}},
	}

	MergeMembership([]*domain.User{alice}, teams)
	first := append([]string(nil), alice.MemberOf...)
	MergeMembership([]*domain.User{alice}, teams)

	assert.Equal(t, first, alice.MemberOf)
	assert.Equal(t, []string{"backend"}, alice.MemberOf)
}

func TestMergeMembershipDuplicateLoginFirstSeenWins(t *testing.T) {
	first := &domain.User{Login: "alice", Email: "alice@first.example"}
	second := &domain.User{Login: "alice", Email: "alice@second.example"}

	merged := MergeMembership([]*domain.User{first, second}, nil)

	require.Len(t, merged, 1)
	assert.Same(t, first, merged[0])
	assert.Equal(t, "alice@first.example", merged[0].Email)
}

func TestMergeMembershipUnknownMemberSkipped(t *testing.T) {
	alice := user("alice")
	teams := []*domain.Team{
		{Slug: "backend", Members: []string{"alice", "external-collaborator"}},
	}

	merged := MergeMembership([]*domain.User{alice}, teams)

	require.Len(t, merged, 1)
	assert.Equal(t, []string{"backend"}, alice.MemberOf)
	// Teams keep their member list as fetched.
	assert.Equal(t, []string{"alice", "external-collaborator"}, teams[0].Members)
}

func TestMergeMembershipMutualConsistency(t *testing.T) {
	users := []*domain.User{user("alice"), user("bob"), user("carol")}
	teams := []*domain.Team{
		{Slug: "backend", Members: []string{"alice", "bob"}},
		{Slug: "frontend", Members: []string{"carol"}},
		{Slug: "platform", Members: []string{"alice", "carol"}},
	}

	merged := MergeMembership(users, teams)

	byLogin := make(map[string]*domain.User)
	for _, u := range merged {
		byLogin[u.Login] = u
	}

	// Every team member known to the index lists the team, and every
	// listed team lists the user.
	for _, team := range teams {
		for _, login := range team.Members {
			if u, ok := byLogin[login]; ok {
				assert.Contains(t, u.MemberOf, team.Slug)
			}
		}
	}
	for _, u := range merged {
		for _, slug := range u.MemberOf {
			var members []string
			for _, team := range teams {
				if team.Slug == slug {
					members = team.Members
				}
			}
			assert.Contains(t, members, u.Login)
		}
	}
}
