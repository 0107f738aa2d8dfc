package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient serves scripted JSON pages per query, keyed by operation
// name (plus teamSlug for the member continuation query), and records
// every request it sees. Safe for concurrent use, as readers query the
// top-level traversals in parallel.
type fakeClient struct {
	mu       sync.Mutex
	pages    map[string][]string
	calls    map[string]int
	requests []fakeRequest
}

type fakeRequest struct {
	key  string
	vars map[string]interface{}
}

func newFakeClient(pages map[string][]string) *fakeClient {
	return &fakeClient{pages: pages, calls: map[string]int{}}
}

func (f *fakeClient) Query(_ context.Context, query string, vars map[string]interface{}, target interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := operationName(query)
	if slug, ok := vars["teamSlug"].(string); ok {
		key += ":" + slug
	}
	f.requests = append(f.requests, fakeRequest{key: key, vars: vars})

	i := f.calls[key]
	f.calls[key]++
	pages, ok := f.pages[key]
	if !ok || i >= len(pages) {
		return fmt.Errorf("unexpected request %s #%d", key, i+1)
	}
	return json.Unmarshal([]byte(pages[i]), target)
}

func operationName(query string) string {
	fields := strings.Fields(query)
	for i, field := range fields {
		if field == "query" && i+1 < len(fields) {
			name, _, _ := strings.Cut(fields[i+1], "(")
			return name
		}
	}
	return ""
}

func cursorOf(vars map[string]interface{}) string {
	switch c := vars["cursor"].(type) {
	case *string:
		if c == nil {
			return ""
		}
		return *c
	case string:
		return c
	default:
		return ""
	}
}

func repoPage(start, count int, nextCursor string) string {
	nodes := make([]string, count)
	for i := 0; i < count; i++ {
		nodes[i] = fmt.Sprintf(`{"name":"repo-%d","url":"https://github.com/acme/repo-%d","isArchived":false}`, start+i, start+i)
	}
	pageInfo := `{"hasNextPage":false,"endCursor":null}`
	if nextCursor != "" {
		pageInfo = fmt.Sprintf(`{"hasNextPage":true,"endCursor":"%s"}`, nextCursor)
	}
	return fmt.Sprintf(`{"repositoryOwner":{"login":"acme","repositories":{"pageInfo":%s,"nodes":[%s]}}}`,
		pageInfo, strings.Join(nodes, ","))
}

func TestFetchAllThreePages(t *testing.T) {
	client := newFakeClient(map[string][]string{
		"repositories": {
			repoPage(0, 100, "c1"),
			repoPage(100, 100, "c2"),
			repoPage(200, 47, ""),
		},
	})

	names, err := fetchAll(context.Background(), client, repositoriesQuery,
		map[string]interface{}{"org": "acme"},
		func(resp *repositoriesResponse) *Connection[repositoryNode] {
			return resp.RepositoryOwner.Repositories
		},
		func(_ context.Context, node repositoryNode) (string, error) {
			return node.Name, nil
		},
	)
	require.NoError(t, err)

	require.Len(t, names, 247)
	for i, name := range names {
		assert.Equal(t, fmt.Sprintf("repo-%d", i), name)
	}

	require.Len(t, client.requests, 3)
	assert.Equal(t, "", cursorOf(client.requests[0].vars))
	assert.Equal(t, "c1", cursorOf(client.requests[1].vars))
	assert.Equal(t, "c2", cursorOf(client.requests[2].vars))
	assert.Equal(t, "acme", client.requests[0].vars["org"])
}

func TestFetchAllStopsAtLastPage(t *testing.T) {
	client := newFakeClient(map[string][]string{
		"repositories": {
			repoPage(0, 3, ""),
			repoPage(3, 3, ""), // must never be requested
		},
	})

	names, err := fetchAll(context.Background(), client, repositoriesQuery,
		map[string]interface{}{"org": "acme"},
		func(resp *repositoriesResponse) *Connection[repositoryNode] {
			return resp.RepositoryOwner.Repositories
		},
		func(_ context.Context, node repositoryNode) (string, error) {
			return node.Name, nil
		},
	)
	require.NoError(t, err)
	assert.Len(t, names, 3)
	assert.Len(t, client.requests, 1)
}

func TestFetchAllMissingConnection(t *testing.T) {
	client := newFakeClient(map[string][]string{
		"repositories": {
			`{"repositoryOwner":null}`,
			repoPage(0, 1, ""),
		},
	})

	_, err := fetchAll(context.Background(), client, repositoriesQuery,
		map[string]interface{}{"org": "no-such-org"},
		func(resp *repositoriesResponse) *Connection[repositoryNode] {
			if resp.RepositoryOwner == nil {
				return nil
			}
			return resp.RepositoryOwner.Repositories
		},
		func(_ context.Context, node repositoryNode) (string, error) {
			return node.Name, nil
		},
	)

	var missing *MissingConnectionError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "no-such-org", missing.Variables["org"])
	assert.Len(t, client.requests, 1, "no further requests after a malformed page")
}

func TestFetchAllMapNodeErrorAborts(t *testing.T) {
	client := newFakeClient(map[string][]string{
		"repositories": {
			repoPage(0, 2, "c1"),
			repoPage(2, 2, ""),
		},
	})

	boom := errors.New("boom")
	_, err := fetchAll(context.Background(), client, repositoriesQuery,
		map[string]interface{}{"org": "acme"},
		func(resp *repositoriesResponse) *Connection[repositoryNode] {
			return resp.RepositoryOwner.Repositories
		},
		func(_ context.Context, node repositoryNode) (string, error) {
			if node.Name == "repo-1" {
				return "", boom
			}
			return node.Name, nil
		},
	)
	require.ErrorIs(t, err, boom)
	assert.Len(t, client.requests, 1)
}

func TestFetchAllPageLimit(t *testing.T) {
	pages := make([]string, maxPages+1)
	for i := range pages {
		pages[i] = repoPage(i, 1, fmt.Sprintf("c%d", i))
	}
	client := newFakeClient(map[string][]string{"repositories": pages})

	_, err := fetchAll(context.Background(), client, repositoriesQuery,
		map[string]interface{}{"org": "acme"},
		func(resp *repositoriesResponse) *Connection[repositoryNode] {
			return resp.RepositoryOwner.Repositories
		},
		func(_ context.Context, node repositoryNode) (string, error) {
			return node.Name, nil
		},
	)

	var limit *PageLimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, maxPages, limit.Limit)
	assert.Len(t, client.requests, maxPages)
}
