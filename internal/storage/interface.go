package storage

import (
	"context"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
)

// Storage is the abstract interface for the catalog sink. A snapshot
// replaces everything previously stored for the organization; reads see
// the latest complete snapshot only.
type Storage interface {
	// Snapshot operations
	SaveSnapshot(ctx context.Context, data *domain.OrgData) error

	// Entity retrieval
	GetRepositories(ctx context.Context, org string) ([]*domain.Repository, error)
	GetUsers(ctx context.Context, org string) ([]*domain.User, error)
	GetUser(ctx context.Context, org, login string) (*domain.User, error)
	GetTeams(ctx context.Context, org string) ([]*domain.Team, error)
	GetTeam(ctx context.Context, org, slug string) (*domain.Team, error)

	// Emitted locations
	GetLocations(ctx context.Context, org string) ([]*domain.Location, error)

	// Ingestion run bookkeeping
	SaveIngestionRun(ctx context.Context, run *domain.IngestionRun) error
	GetIngestionRuns(ctx context.Context, org string) ([]*domain.IngestionRun, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
