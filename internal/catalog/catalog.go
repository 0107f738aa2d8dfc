package catalog

import (
	"context"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
	"github.com/kurihiro0119/github-org-ingest/internal/errors"
	"github.com/kurihiro0119/github-org-ingest/internal/ingest"
	"github.com/kurihiro0119/github-org-ingest/internal/storage"
)

// Catalog is the read model over the stored snapshot, serving the API
// and the CLI.
type Catalog interface {
	// GetOrgSummary returns entity counts and the latest run for an organization
	GetOrgSummary(ctx context.Context, org string) (*OrgSummary, error)

	// GetRepositories returns stored repositories, optionally filtered to non-archived
	GetRepositories(ctx context.Context, org string, includeArchived bool) ([]*domain.Repository, error)

	// GetUsers returns stored users with membership resolved
	GetUsers(ctx context.Context, org string) ([]*domain.User, error)

	// GetUser returns a single user
	GetUser(ctx context.Context, org, login string) (*domain.User, error)

	// GetTeams returns stored teams with members resolved
	GetTeams(ctx context.Context, org string) ([]*domain.Team, error)

	// GetTeam returns a single team
	GetTeam(ctx context.Context, org, slug string) (*domain.Team, error)

	// GetTeamTree returns the team hierarchy as a forest of root teams
	GetTeamTree(ctx context.Context, org string) ([]*TeamNode, error)

	// GetLocations returns the emitted repository locations
	GetLocations(ctx context.Context, org string) ([]*domain.Location, error)

	// GetIngestionRuns returns run history, newest first
	GetIngestionRuns(ctx context.Context, org string) ([]*domain.IngestionRun, error)
}

// OrgSummary holds entity counts for one organization snapshot.
type OrgSummary struct {
	Org           string               `json:"org"`
	TotalRepos    int                  `json:"totalRepos"`
	MatchingRepos int                  `json:"matchingRepos"`
	TotalUsers    int                  `json:"totalUsers"`
	TotalTeams    int                  `json:"totalTeams"`
	LastRun       *domain.IngestionRun `json:"lastRun,omitempty"`
}

// TeamNode is one node of the team hierarchy forest.
type TeamNode struct {
	Team     *domain.Team `json:"team"`
	Children []*TeamNode  `json:"children,omitempty"`
}

// catalog implements the Catalog interface
type catalog struct {
	storage storage.Storage
}

// NewCatalog creates a new catalog over the given storage
func NewCatalog(storage storage.Storage) Catalog {
	return &catalog{storage: storage}
}

// GetOrgSummary returns entity counts and the latest run for an organization
func (c *catalog) GetOrgSummary(ctx context.Context, org string) (*OrgSummary, error) {
	repos, err := c.storage.GetRepositories(ctx, org)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		runs, err := c.storage.GetIngestionRuns(ctx, org)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, errors.NewNotFoundError("organization " + org)
		}
	}

	users, err := c.storage.GetUsers(ctx, org)
	if err != nil {
		return nil, err
	}
	teams, err := c.storage.GetTeams(ctx, org)
	if err != nil {
		return nil, err
	}
	runs, err := c.storage.GetIngestionRuns(ctx, org)
	if err != nil {
		return nil, err
	}

	matching := 0
	for _, r := range repos {
		if !r.IsArchived {
			matching++
		}
	}

	summary := &OrgSummary{
		Org:           org,
		TotalRepos:    len(repos),
		MatchingRepos: matching,
		TotalUsers:    len(users),
		TotalTeams:    len(teams),
	}
	if len(runs) > 0 {
		summary.LastRun = runs[0]
	}
	return summary, nil
}

// GetRepositories returns stored repositories, optionally filtered to non-archived
func (c *catalog) GetRepositories(ctx context.Context, org string, includeArchived bool) ([]*domain.Repository, error) {
	repos, err := c.storage.GetRepositories(ctx, org)
	if err != nil {
		return nil, err
	}
	if includeArchived {
		return repos, nil
	}

	var matching []*domain.Repository
	for _, r := range repos {
		if !r.IsArchived {
			matching = append(matching, r)
		}
	}
	return matching, nil
}

// GetUsers returns stored users with membership resolved
func (c *catalog) GetUsers(ctx context.Context, org string) ([]*domain.User, error) {
	return c.storage.GetUsers(ctx, org)
}

// GetUser returns a single user
func (c *catalog) GetUser(ctx context.Context, org, login string) (*domain.User, error) {
	user, err := c.storage.GetUser(ctx, org, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user " + login)
	}
	return user, nil
}

// GetTeams returns stored teams with members resolved
func (c *catalog) GetTeams(ctx context.Context, org string) ([]*domain.Team, error) {
	return c.storage.GetTeams(ctx, org)
}

// GetTeam returns a single team
func (c *catalog) GetTeam(ctx context.Context, org, slug string) (*domain.Team, error) {
	team, err := c.storage.GetTeam(ctx, org, slug)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, errors.NewNotFoundError("team " + slug)
	}
	return team, nil
}

// GetTeamTree returns the team hierarchy as a forest of root teams.
// Parent references are re-linked from the stored parent slugs; a stored
// snapshot passed hierarchy validation at ingest time, but linking is
// still cycle-checked in case rows were edited out-of-band.
func (c *catalog) GetTeamTree(ctx context.Context, org string) ([]*TeamNode, error) {
	teams, err := c.storage.GetTeams(ctx, org)
	if err != nil {
		return nil, err
	}
	if err := ingest.LinkTeamHierarchy(teams); err != nil {
		return nil, err
	}

	nodes := make(map[string]*TeamNode, len(teams))
	for _, team := range teams {
		nodes[team.Slug] = &TeamNode{Team: team}
	}

	var roots []*TeamNode
	for _, team := range teams {
		node := nodes[team.Slug]
		if team.Parent == nil {
			roots = append(roots, node)
			continue
		}
		parent := nodes[team.Parent.Slug]
		parent.Children = append(parent.Children, node)
	}
	return roots, nil
}

// GetLocations returns the emitted repository locations
func (c *catalog) GetLocations(ctx context.Context, org string) ([]*domain.Location, error) {
	return c.storage.GetLocations(ctx, org)
}

// GetIngestionRuns returns run history, newest first
func (c *catalog) GetIngestionRuns(ctx context.Context, org string) ([]*domain.IngestionRun, error) {
	return c.storage.GetIngestionRuns(ctx, org)
}
