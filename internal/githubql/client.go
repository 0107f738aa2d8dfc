// Package githubql provides the GraphQL query capability used by the
// ingestion engine. The engine only depends on the Client interface; the
// HTTP implementation posts raw query text plus variables to the GitHub
// GraphQL endpoint and decodes the response data into typed structs.
package githubql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// Client executes a GraphQL query and decodes the response data into
// target. Variables are sent as-is; a nil cursor variable is serialized
// as JSON null, which GitHub treats as "first page".
type Client interface {
	Query(ctx context.Context, query string, variables map[string]interface{}, target interface{}) error
}

// httpClient implements Client over HTTP
type httpClient struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a GraphQL client authenticated with a personal
// access token.
func NewClient(endpoint, token string) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return &httpClient{
		endpoint: endpoint,
		client:   oauth2.NewClient(context.Background(), ts),
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (c *httpClient) Query(ctx context.Context, query string, variables map[string]interface{}, target interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("graphql request failed: %s - %s", resp.Status, string(respBody))
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", decoded.Errors[0].Message)
	}

	if target != nil && decoded.Data != nil {
		if err := json.Unmarshal(decoded.Data, target); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
