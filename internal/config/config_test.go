package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_GRAPHQL_URL", "")
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("SQLITE_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultGraphQLURL, cfg.GitHubGraphQLURL)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "./catalog.db", cfg.SQLitePath)
	assert.Equal(t, "8080", cfg.APIPort)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_GRAPHQL_URL", "https://ghe.example.com/api/graphql")
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("POSTGRES_URL", "postgres://localhost/catalog")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.GitHubToken)
	assert.Equal(t, "https://ghe.example.com/api/graphql", cfg.GitHubGraphQLURL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"missing token", Config{StorageType: "sqlite"}, "GITHUB_TOKEN"},
		{"bad storage type", Config{GitHubToken: "tok", StorageType: "mysql"}, "STORAGE_TYPE"},
		{"postgres without url", Config{GitHubToken: "tok", StorageType: "postgres"}, "POSTGRES_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
