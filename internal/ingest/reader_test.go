package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
)

const usersPage = `{"organization":{"membersWithRole":{
	"pageInfo":{"hasNextPage":false,"endCursor":null},
	"nodes":[
		{"login":"alice","name":"Alice","email":"alice@example.com","bio":"","avatarUrl":"https://avatars.example/alice"},
		{"login":"bob","name":"Bob","email":"","bio":"builds things","avatarUrl":""},
		{"login":"alice","name":"Alice Again","email":"alice@dup.example","bio":"","avatarUrl":""}
	]}}}`

const teamsPage = `{"organization":{"teams":{
	"pageInfo":{"hasNextPage":false,"endCursor":null},
	"nodes":[
		{"slug":"platform","combinedSlug":"acme/platform","name":"Platform","description":"","avatarUrl":"","parentTeam":null,
		 "members":{"pageInfo":{"hasNextPage":false,"endCursor":null},"nodes":[{"login":"alice"}]}},
		{"slug":"backend","combinedSlug":"acme/backend","name":"Backend","description":"","avatarUrl":"","parentTeam":{"slug":"platform"},
		 "members":{"pageInfo":{"hasNextPage":true,"endCursor":"m1"},"nodes":[{"login":"alice"}]}}
	]}}}`

const backendMembersPage1 = `{"organization":{"team":{"members":{
	"pageInfo":{"hasNextPage":true,"endCursor":"m2"},
	"nodes":[{"login":"alice"}]}}}}`

const backendMembersPage2 = `{"organization":{"team":{"members":{
	"pageInfo":{"hasNextPage":false,"endCursor":null},
	"nodes":[{"login":"bob"},{"login":"external-collaborator"}]}}}}`

const reposPage = `{"repositoryOwner":{"login":"acme","repositories":{
	"pageInfo":{"hasNextPage":false,"endCursor":null},
	"nodes":[
		{"name":"api","url":"https://github.com/acme/api","isArchived":false},
		{"name":"legacy","url":"https://github.com/acme/legacy","isArchived":true},
		{"name":"web","url":"https://github.com/acme/web","isArchived":false}
	]}}}`

func TestOrganizationReaderRead(t *testing.T) {
	client := newFakeClient(map[string][]string{
		"repositories":        {reposPage},
		"users":               {usersPage},
		"teams":               {teamsPage},
		"teamMembers:backend": {backendMembersPage1, backendMembersPage2},
	})

	data, err := NewOrganizationReader(client).Read(context.Background(), "acme")
	require.NoError(t, err)

	// Repositories: full list in fetch order, archived flag preserved.
	require.Len(t, data.Repositories, 3)
	assert.Equal(t, "api", data.Repositories[0].Name)
	assert.Equal(t, "legacy", data.Repositories[1].Name)
	assert.True(t, data.Repositories[1].IsArchived)

	matching := data.Matching()
	require.Len(t, matching, 2)
	assert.Equal(t, "https://github.com/acme/api", matching[0].URL)
	assert.Equal(t, "https://github.com/acme/web", matching[1].URL)

	locations := data.Locations()
	require.Len(t, locations, 2)
	assert.Equal(t, "url", locations[0].Type)
	assert.Equal(t, "https://github.com/acme/api", locations[0].Target)

	// Users: duplicate login collapsed, first-seen fields kept.
	require.Len(t, data.Users, 2)
	assert.Equal(t, "alice", data.Users[0].Login)
	assert.Equal(t, "Alice", data.Users[0].Name)
	assert.Equal(t, []string{"platform", "backend"}, data.Users[0].MemberOf)
	assert.Equal(t, []string{"backend"}, data.Users[1].MemberOf)

	// Teams: hierarchy linked, multi-page member list refetched in full.
	require.Len(t, data.Teams, 2)
	platform, backend := data.Teams[0], data.Teams[1]
	assert.True(t, platform.IsRoot())
	assert.Same(t, platform, backend.Parent)
	assert.Equal(t, []*domain.Team{backend}, platform.Children)
	assert.Equal(t, []string{"alice"}, platform.Members)
	assert.Equal(t, []string{"alice", "bob", "external-collaborator"}, backend.Members)
}

func TestOrganizationReaderReadAbortsOnMissingOrg(t *testing.T) {
	client := newFakeClient(map[string][]string{
		"repositories":        {reposPage},
		"users":               {`{"organization":null}`},
		"teams":               {teamsPage},
		"teamMembers:backend": {backendMembersPage1, backendMembersPage2},
	})

	_, err := NewOrganizationReader(client).Read(context.Background(), "acme")

	var missing *MissingConnectionError
	require.ErrorAs(t, err, &missing)
}

func TestOrganizationReaderTeamsCycleFailsRead(t *testing.T) {
	cyclicTeams := `{"organization":{"teams":{
		"pageInfo":{"hasNextPage":false,"endCursor":null},
		"nodes":[
			{"slug":"team-a","combinedSlug":"acme/team-a","parentTeam":{"slug":"team-b"},
			 "members":{"pageInfo":{"hasNextPage":false,"endCursor":null},"nodes":[]}},
			{"slug":"team-b","combinedSlug":"acme/team-b","parentTeam":{"slug":"team-a"},
			 "members":{"pageInfo":{"hasNextPage":false,"endCursor":null},"nodes":[]}}
		]}}}`

	client := newFakeClient(map[string][]string{
		"repositories": {reposPage},
		"users":        {usersPage},
		"teams":        {cyclicTeams},
	})

	_, err := NewOrganizationReader(client).Read(context.Background(), "acme")

	var cycle *HierarchyCycleError
	require.ErrorAs(t, err, &cycle)
}
