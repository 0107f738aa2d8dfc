package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
)

// Client is the API client for github-org-ingest
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetRepositories retrieves stored repositories for an organization
func (c *Client) GetRepositories(org string, includeArchived bool) ([]*domain.Repository, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/repos", org)
	params := url.Values{}
	if includeArchived {
		params.Set("archived", "true")
	}

	var response struct {
		Data []*domain.Repository `json:"data"`
	}
	if err := c.get(path, params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetUsers retrieves stored users with membership resolved
func (c *Client) GetUsers(org string) ([]*domain.User, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/users", org)

	var response struct {
		Data []*domain.User `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetUser retrieves a single user
func (c *Client) GetUser(org, login string) (*domain.User, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/users/%s", org, login)

	var response struct {
		Data *domain.User `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetTeams retrieves stored teams with members resolved
func (c *Client) GetTeams(org string) ([]*domain.Team, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/teams", org)

	var response struct {
		Data []*domain.Team `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetTeam retrieves a single team
func (c *Client) GetTeam(org, slug string) (*domain.Team, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/teams/%s", org, slug)

	var response struct {
		Data *domain.Team `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetLocations retrieves the emitted repository locations
func (c *Client) GetLocations(org string) ([]*domain.Location, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/locations", org)

	var response struct {
		Data []*domain.Location `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetIngestionRuns retrieves ingestion run history, newest first
func (c *Client) GetIngestionRuns(org string) ([]*domain.IngestionRun, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/ingestions", org)

	var response struct {
		Data []*domain.IngestionRun `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
