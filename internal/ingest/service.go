package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
	apperrors "github.com/kurihiro0119/github-org-ingest/internal/errors"
	"github.com/kurihiro0119/github-org-ingest/internal/githubql"
	"github.com/kurihiro0119/github-org-ingest/internal/storage"
)

// Service runs complete organization ingestions: resolve the org, read
// its structure, persist the snapshot and report the emitted locations.
type Service struct {
	reader *OrganizationReader
	rest   *github.Client
	store  storage.Storage
}

// NewService creates an ingestion service. graphqlURL is the GraphQL
// endpoint; the REST client derived from the same token is used only for
// the pre-flight organization lookup.
func NewService(graphqlURL, token string, store storage.Storage) *Service {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Service{
		reader: NewOrganizationReader(githubql.NewClient(graphqlURL, token)),
		rest:   github.NewClient(tc),
		store:  store,
	}
}

// NewServiceWithReader creates a service over an existing reader,
// skipping the pre-flight lookup. Used by tests and embedded setups.
func NewServiceWithReader(reader *OrganizationReader, store storage.Storage) *Service {
	return &Service{reader: reader, store: store}
}

// DiscoverOrgs lists every organization visible to the authenticated
// viewer as a URL location. Callers route the returned locations back
// into IngestURL to ingest each organization.
func (s *Service) DiscoverOrgs(ctx context.Context) ([]*domain.Location, error) {
	urls, err := s.reader.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Discovered %d organizations", len(urls))

	locations := make([]*domain.Location, 0, len(urls))
	for _, u := range urls {
		locations = append(locations, &domain.Location{
			Type:   domain.LocationTypeURL,
			Target: u,
		})
	}
	return locations, nil
}

// IngestURL ingests the organization addressed by orgURL. It returns
// (nil, false, nil) when the URL does not address an organization root,
// so callers can route such URLs to other processors.
func (s *Service) IngestURL(ctx context.Context, orgURL string) (*domain.IngestionRun, bool, error) {
	org, ok := ParseOrgURL(orgURL)
	if !ok {
		return nil, false, nil
	}
	run, err := s.Ingest(ctx, org)
	return run, true, err
}

// Ingest performs one point-in-time ingestion of org. Either the full
// organization is read, reconciled and persisted, or the run is recorded
// as failed and the error returned, never a partial entity set.
func (s *Service) Ingest(ctx context.Context, org string) (*domain.IngestionRun, error) {
	if err := s.resolveOrg(ctx, org); err != nil {
		return nil, err
	}

	run := &domain.IngestionRun{
		ID:        uuid.New().String(),
		Org:       org,
		Status:    domain.IngestionStatusInProgress,
		StartedAt: time.Now(),
	}

	log.Printf("Reading GitHub organization %s", org)
	data, err := s.reader.Read(ctx, org)
	if err != nil {
		run.Status = domain.IngestionStatusFailed
		run.FinishedAt = time.Now()
		if saveErr := s.store.SaveIngestionRun(ctx, run); saveErr != nil {
			log.Printf("Warning: failed to record failed run: %v", saveErr)
		}
		return nil, err
	}

	matching := data.Matching()
	duration := time.Since(run.StartedAt).Round(time.Millisecond)
	log.Printf("Read %d repositories (%d matching), %d users, %d teams in %v",
		len(data.Repositories), len(matching), len(data.Users), len(data.Teams), duration)

	run.TotalRepos = len(data.Repositories)
	run.MatchingRepos = len(matching)
	run.TotalUsers = len(data.Users)
	run.TotalTeams = len(data.Teams)

	if err := s.store.SaveSnapshot(ctx, data); err != nil {
		run.Status = domain.IngestionStatusFailed
		run.FinishedAt = time.Now()
		if saveErr := s.store.SaveIngestionRun(ctx, run); saveErr != nil {
			log.Printf("Warning: failed to record failed run: %v", saveErr)
		}
		return nil, apperrors.NewInternalError("failed to save snapshot", err)
	}

	run.Status = domain.IngestionStatusCompleted
	run.FinishedAt = time.Now()
	if err := s.store.SaveIngestionRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// resolveOrg verifies the organization exists and the token can see it
// before any traversal starts.
func (s *Service) resolveOrg(ctx context.Context, org string) error {
	if s.rest == nil {
		return nil
	}
	if _, _, err := s.rest.Organizations.Get(ctx, org); err != nil {
		return fmt.Errorf("failed to resolve organization %s: %w", org, err)
	}
	return nil
}
