package githubql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuerySendsQueryAndVariables(t *testing.T) {
	var received graphqlRequest
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"organization":{"login":"acme"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	var target struct {
		Organization struct {
			Login string `json:"login"`
		} `json:"organization"`
	}
	err := client.Query(context.Background(), "query org($org: String!) { organization(login: $org) { login } }",
		map[string]interface{}{"org": "acme", "cursor": nil}, &target)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", authHeader)
	assert.Contains(t, received.Query, "organization(login: $org)")
	assert.Equal(t, "acme", received.Variables["org"])
	cursor, ok := received.Variables["cursor"]
	assert.True(t, ok, "nil cursor is sent as JSON null, not omitted")
	assert.Nil(t, cursor)
	assert.Equal(t, "acme", target.Organization.Login)
}

func TestQuerySurfacesGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":null,"errors":[{"message":"Could not resolve to an Organization","type":"NOT_FOUND"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	err := client.Query(context.Background(), "query org { organization { login } }", nil, &struct{}{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not resolve to an Organization")
}

func TestQueryNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-token")

	err := client.Query(context.Background(), "query org { organization { login } }", nil, &struct{}{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
