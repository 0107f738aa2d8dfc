package domain

import "time"

// Ingestion run statuses.
const (
	IngestionStatusInProgress = "in_progress"
	IngestionStatusCompleted  = "completed"
	IngestionStatusFailed     = "failed"
)

// IngestionRun represents one point-in-time organization ingestion.
type IngestionRun struct {
	ID            string    `json:"id"`
	Org           string    `json:"org"`
	Status        string    `json:"status"`
	TotalRepos    int       `json:"totalRepos"`
	MatchingRepos int       `json:"matchingRepos"`
	TotalUsers    int       `json:"totalUsers"`
	TotalTeams    int       `json:"totalTeams"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}
