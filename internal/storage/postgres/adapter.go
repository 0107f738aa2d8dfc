package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
	"github.com/kurihiro0119/github-org-ingest/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connStr string) (storage.Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS repositories (
		org TEXT NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		is_archived BOOLEAN NOT NULL,
		position INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (org, url)
	);

	CREATE INDEX IF NOT EXISTS idx_repositories_org ON repositories(org);

	CREATE TABLE IF NOT EXISTS users (
		org TEXT NOT NULL,
		login TEXT NOT NULL,
		name TEXT,
		bio TEXT,
		email TEXT,
		avatar_url TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (org, login)
	);

	CREATE INDEX IF NOT EXISTS idx_users_org ON users(org);

	CREATE TABLE IF NOT EXISTS teams (
		org TEXT NOT NULL,
		slug TEXT NOT NULL,
		combined_slug TEXT NOT NULL,
		name TEXT,
		description TEXT,
		avatar_url TEXT,
		parent_slug TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (org, slug)
	);

	CREATE INDEX IF NOT EXISTS idx_teams_org ON teams(org);
	CREATE INDEX IF NOT EXISTS idx_teams_parent ON teams(org, parent_slug);

	CREATE TABLE IF NOT EXISTS memberships (
		org TEXT NOT NULL,
		team_slug TEXT NOT NULL,
		login TEXT NOT NULL,
		PRIMARY KEY (org, team_slug, login)
	);

	CREATE INDEX IF NOT EXISTS idx_memberships_login ON memberships(org, login);

	CREATE TABLE IF NOT EXISTS locations (
		org TEXT NOT NULL,
		type TEXT NOT NULL,
		target TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (org, target)
	);

	CREATE TABLE IF NOT EXISTS ingestion_runs (
		id TEXT PRIMARY KEY,
		org TEXT NOT NULL,
		status TEXT NOT NULL,
		total_repos INTEGER NOT NULL DEFAULT 0,
		matching_repos INTEGER NOT NULL DEFAULT 0,
		total_users INTEGER NOT NULL DEFAULT 0,
		total_teams INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ingestion_runs_org ON ingestion_runs(org);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveSnapshot replaces the stored entity set for the organization
func (s *postgresStorage) SaveSnapshot(ctx context.Context, data *domain.OrgData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"repositories", "users", "teams", "memberships", "locations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE org = $1", data.Org); err != nil {
			return err
		}
	}

	for i, repo := range data.Repositories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO repositories (org, name, url, is_archived, position)
			VALUES ($1, $2, $3, $4, $5)`,
			data.Org, repo.Name, repo.URL, repo.IsArchived, i)
		if err != nil {
			return err
		}
	}

	for _, user := range data.Users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (org, login, name, bio, email, avatar_url)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			data.Org, user.Login, user.Name, user.Bio, user.Email, user.AvatarURL)
		if err != nil {
			return err
		}
	}

	for _, team := range data.Teams {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO teams (org, slug, combined_slug, name, description, avatar_url, parent_slug)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			data.Org, team.Slug, team.CombinedSlug, team.Name, team.Description, team.AvatarURL, team.ParentSlug)
		if err != nil {
			return err
		}
		for _, login := range team.Members {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO memberships (org, team_slug, login)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING`,
				data.Org, team.Slug, login)
			if err != nil {
				return err
			}
		}
	}

	for i, location := range data.Locations() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO locations (org, type, target, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING`,
			data.Org, location.Type, location.Target, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRepositories returns all repositories for an organization in fetch order
func (s *postgresStorage) GetRepositories(ctx context.Context, org string) ([]*domain.Repository, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, url, is_archived FROM repositories
		WHERE org = $1 ORDER BY position`, org)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*domain.Repository
	for rows.Next() {
		var repo domain.Repository
		if err := rows.Scan(&repo.Name, &repo.URL, &repo.IsArchived); err != nil {
			return nil, err
		}
		repos = append(repos, &repo)
	}
	return repos, rows.Err()
}

// GetUsers returns all users for an organization with membership resolved
func (s *postgresStorage) GetUsers(ctx context.Context, org string) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT login, name, bio, email, avatar_url FROM users
		WHERE org = $1 ORDER BY login`, org)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.Login, &user.Name, &user.Bio, &user.Email, &user.AvatarURL); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, user := range users {
		memberOf, err := s.memberOf(ctx, org, user.Login)
		if err != nil {
			return nil, err
		}
		user.MemberOf = memberOf
	}
	return users, nil
}

// GetUser returns a single user by login
func (s *postgresStorage) GetUser(ctx context.Context, org, login string) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, `
		SELECT login, name, bio, email, avatar_url FROM users
		WHERE org = $1 AND login = $2`, org, login).
		Scan(&user.Login, &user.Name, &user.Bio, &user.Email, &user.AvatarURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	memberOf, err := s.memberOf(ctx, org, login)
	if err != nil {
		return nil, err
	}
	user.MemberOf = memberOf
	return &user, nil
}

func (s *postgresStorage) memberOf(ctx context.Context, org, login string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_slug FROM memberships
		WHERE org = $1 AND login = $2 ORDER BY team_slug`, org, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// GetTeams returns all teams for an organization with members resolved
func (s *postgresStorage) GetTeams(ctx context.Context, org string) ([]*domain.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, combined_slug, name, description, avatar_url, parent_slug FROM teams
		WHERE org = $1 ORDER BY slug`, org)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.Slug, &team.CombinedSlug, &team.Name, &team.Description, &team.AvatarURL, &team.ParentSlug); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, team := range teams {
		members, err := s.teamMembers(ctx, org, team.Slug)
		if err != nil {
			return nil, err
		}
		team.Members = members
	}
	return teams, nil
}

// GetTeam returns a single team by slug
func (s *postgresStorage) GetTeam(ctx context.Context, org, slug string) (*domain.Team, error) {
	var team domain.Team
	err := s.db.QueryRowContext(ctx, `
		SELECT slug, combined_slug, name, description, avatar_url, parent_slug FROM teams
		WHERE org = $1 AND slug = $2`, org, slug).
		Scan(&team.Slug, &team.CombinedSlug, &team.Name, &team.Description, &team.AvatarURL, &team.ParentSlug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	members, err := s.teamMembers(ctx, org, slug)
	if err != nil {
		return nil, err
	}
	team.Members = members
	return &team, nil
}

func (s *postgresStorage) teamMembers(ctx context.Context, org, slug string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT login FROM memberships
		WHERE org = $1 AND team_slug = $2 ORDER BY login`, org, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logins []string
	for rows.Next() {
		var login string
		if err := rows.Scan(&login); err != nil {
			return nil, err
		}
		logins = append(logins, login)
	}
	return logins, rows.Err()
}

// GetLocations returns the emitted locations for an organization in emit order
func (s *postgresStorage) GetLocations(ctx context.Context, org string) ([]*domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, target FROM locations
		WHERE org = $1 ORDER BY position`, org)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*domain.Location
	for rows.Next() {
		var location domain.Location
		if err := rows.Scan(&location.Type, &location.Target); err != nil {
			return nil, err
		}
		locations = append(locations, &location)
	}
	return locations, rows.Err()
}

// SaveIngestionRun upserts an ingestion run record
func (s *postgresStorage) SaveIngestionRun(ctx context.Context, run *domain.IngestionRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs
		(id, org, status, total_repos, matching_repos, total_users, total_teams, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			total_repos = EXCLUDED.total_repos,
			matching_repos = EXCLUDED.matching_repos,
			total_users = EXCLUDED.total_users,
			total_teams = EXCLUDED.total_teams,
			finished_at = EXCLUDED.finished_at`,
		run.ID, run.Org, run.Status, run.TotalRepos, run.MatchingRepos,
		run.TotalUsers, run.TotalTeams, run.StartedAt, run.FinishedAt)
	return err
}

// GetIngestionRuns returns ingestion runs for an organization, newest first
func (s *postgresStorage) GetIngestionRuns(ctx context.Context, org string) ([]*domain.IngestionRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org, status, total_repos, matching_repos, total_users, total_teams, started_at, finished_at
		FROM ingestion_runs WHERE org = $1 ORDER BY started_at DESC`, org)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.IngestionRun
	for rows.Next() {
		var run domain.IngestionRun
		if err := rows.Scan(&run.ID, &run.Org, &run.Status, &run.TotalRepos, &run.MatchingRepos,
			&run.TotalUsers, &run.TotalTeams, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}
