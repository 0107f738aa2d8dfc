package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
	"github.com/kurihiro0119/github-org-ingest/internal/githubql"
)

// OrganizationReader reads the complete structure of one organization:
// repositories, users and teams, with team hierarchy and membership
// reconciled. A reader is cheap and carries no per-read state.
type OrganizationReader struct {
	client githubql.Client
}

// NewOrganizationReader creates a reader over the given query capability.
func NewOrganizationReader(client githubql.Client) *OrganizationReader {
	return &OrganizationReader{client: client}
}

// Read fetches the full entity set for org. The three top-level
// traversals are independent and run concurrently; hierarchy linking and
// membership reconciliation run after all of them complete. Any failure
// aborts the whole read; there is no partial-result contract.
func (r *OrganizationReader) Read(ctx context.Context, org string) (*domain.OrgData, error) {
	var (
		repositories []*domain.Repository
		users        []*domain.User
		teams        []*domain.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		repositories, err = r.Repositories(gctx, org)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = r.Users(gctx, org)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = r.Teams(gctx, org)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := LinkTeamHierarchy(teams); err != nil {
		return nil, err
	}
	users = MergeMembership(users, teams)

	return &domain.OrgData{
		Org:          org,
		Repositories: repositories,
		Users:        users,
		Teams:        teams,
	}, nil
}

// Organizations fetches the URL of every organization visible to the
// authenticated viewer, in remote order.
func (r *OrganizationReader) Organizations(ctx context.Context) ([]string, error) {
	return fetchAll(ctx, r.client, organizationsQuery,
		map[string]interface{}{},
		func(resp *organizationsResponse) *Connection[organizationNode] {
			if resp.Viewer == nil {
				return nil
			}
			return resp.Viewer.Organizations
		},
		func(_ context.Context, node organizationNode) (string, error) {
			return node.URL, nil
		},
	)
}

// Repositories fetches every repository of org, archived included, in
// remote order.
func (r *OrganizationReader) Repositories(ctx context.Context, org string) ([]*domain.Repository, error) {
	return fetchAll(ctx, r.client, repositoriesQuery,
		map[string]interface{}{"org": org},
		func(resp *repositoriesResponse) *Connection[repositoryNode] {
			if resp.RepositoryOwner == nil {
				return nil
			}
			return resp.RepositoryOwner.Repositories
		},
		func(_ context.Context, node repositoryNode) (*domain.Repository, error) {
			return &domain.Repository{
				Name:       node.Name,
				URL:        node.URL,
				IsArchived: node.IsArchived,
			}, nil
		},
	)
}

// Users fetches every member of org. MemberOf stays empty here; it is
// populated by membership reconciliation.
func (r *OrganizationReader) Users(ctx context.Context, org string) ([]*domain.User, error) {
	return fetchAll(ctx, r.client, usersQuery,
		map[string]interface{}{"org": org},
		func(resp *usersResponse) *Connection[userNode] {
			if resp.Organization == nil {
				return nil
			}
			return resp.Organization.MembersWithRole
		},
		func(_ context.Context, node userNode) (*domain.User, error) {
			return &domain.User{
				Login:     node.Login,
				Name:      node.Name,
				Bio:       node.Bio,
				Email:     node.Email,
				AvatarURL: node.AvatarURL,
			}, nil
		},
	)
}

// Teams fetches every team of org. Each team node carries its first page
// of members inline; the node transform drains the remaining member pages
// before the next team is processed, which keeps team order deterministic.
func (r *OrganizationReader) Teams(ctx context.Context, org string) ([]*domain.Team, error) {
	return fetchAll(ctx, r.client, teamsQuery,
		map[string]interface{}{"org": org},
		func(resp *teamsResponse) *Connection[teamNode] {
			if resp.Organization == nil {
				return nil
			}
			return resp.Organization.Teams
		},
		func(ctx context.Context, node teamNode) (*domain.Team, error) {
			team := &domain.Team{
				Slug:         node.Slug,
				CombinedSlug: node.CombinedSlug,
				Name:         node.Name,
				Description:  node.Description,
				AvatarURL:    node.AvatarURL,
			}
			if node.ParentTeam != nil {
				team.ParentSlug = node.ParentTeam.Slug
			}
			if node.Members == nil {
				return nil, &MissingConnectionError{
					Variables: map[string]interface{}{"org": org, "teamSlug": node.Slug},
				}
			}
			if node.Members.PageInfo.HasNextPage {
				// More than one page of members: refetch the full list
				// through its own traversal.
				members, err := r.teamMembers(ctx, org, node.Slug)
				if err != nil {
					return nil, err
				}
				team.Members = members
				return team, nil
			}
			for _, member := range node.Members.Nodes {
				team.Members = append(team.Members, member.Login)
			}
			return team, nil
		},
	)
}

// teamMembers fetches the complete member list of one team.
func (r *OrganizationReader) teamMembers(ctx context.Context, org, slug string) ([]string, error) {
	return fetchAll(ctx, r.client, teamMembersQuery,
		map[string]interface{}{"org": org, "teamSlug": slug},
		func(resp *teamMembersResponse) *Connection[teamMemberNode] {
			if resp.Organization == nil || resp.Organization.Team == nil {
				return nil
			}
			return resp.Organization.Team.Members
		},
		func(_ context.Context, node teamMemberNode) (string, error) {
			return node.Login, nil
		},
	)
}
