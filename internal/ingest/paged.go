package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurihiro0119/github-org-ingest/internal/githubql"
)

// maxPages bounds one traversal as a runaway-protocol guard. Hitting the
// bound with more pages remaining is reported as a PageLimitError so
// truncation is never silent.
const maxPages = 1000

// PageInfo drives loop continuation. EndCursor is opaque and is threaded
// back verbatim into the next request's cursor variable.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Connection is one page of a paginated remote relation.
type Connection[T any] struct {
	PageInfo PageInfo `json:"pageInfo"`
	Nodes    []T      `json:"nodes"`
}

// MissingConnectionError indicates a page response lacked the expected
// connection shape. It carries the variables used, for diagnosis.
type MissingConnectionError struct {
	Variables map[string]interface{}
}

func (e *MissingConnectionError) Error() string {
	return fmt.Sprintf("found no match for %v", formatVariables(e.Variables))
}

// PageLimitError indicates a traversal was still reporting more pages
// after maxPages requests.
type PageLimitError struct {
	Limit     int
	Variables map[string]interface{}
}

func (e *PageLimitError) Error() string {
	return fmt.Sprintf("pagination exceeded %d pages for %v", e.Limit, formatVariables(e.Variables))
}

func formatVariables(vars map[string]interface{}) string {
	parts := make([]string, 0, len(vars))
	for k, v := range vars {
		if v == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// fetchAll drives a cursor-paginated connection to completion and returns
// the transformed nodes in page order, then within-page node order.
//
// connection extracts the paged relation from one decoded response; a nil
// result is a malformed response, not an empty relation, and fails the
// traversal. mapNode may block (e.g. fetch nested pages) and runs strictly
// in node order so output order stays deterministic.
func fetchAll[R any, N any, O any](
	ctx context.Context,
	client githubql.Client,
	query string,
	variables map[string]interface{},
	connection func(*R) *Connection[N],
	mapNode func(context.Context, N) (O, error),
) ([]O, error) {
	var result []O
	var cursor *string

	for page := 0; page < maxPages; page++ {
		vars := make(map[string]interface{}, len(variables)+1)
		for k, v := range variables {
			vars[k] = v
		}
		vars["cursor"] = cursor

		var response R
		if err := client.Query(ctx, query, vars, &response); err != nil {
			return nil, err
		}

		conn := connection(&response)
		if conn == nil {
			return nil, &MissingConnectionError{Variables: vars}
		}

		for _, node := range conn.Nodes {
			mapped, err := mapNode(ctx, node)
			if err != nil {
				return nil, err
			}
			result = append(result, mapped)
		}

		if !conn.PageInfo.HasNextPage {
			return result, nil
		}
		cursor = conn.PageInfo.EndCursor
	}

	return nil, &PageLimitError{Limit: maxPages, Variables: variables}
}
