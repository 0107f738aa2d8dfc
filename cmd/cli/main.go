package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-org-ingest/internal/catalog"
	"github.com/kurihiro0119/github-org-ingest/internal/config"
	"github.com/kurihiro0119/github-org-ingest/internal/githubql"
	"github.com/kurihiro0119/github-org-ingest/internal/ingest"
	"github.com/kurihiro0119/github-org-ingest/internal/storage"
	"github.com/kurihiro0119/github-org-ingest/internal/storage/postgres"
	"github.com/kurihiro0119/github-org-ingest/internal/storage/sqlite"
)

var (
	outputJSON      bool
	includeArchived bool
	ingestAll       bool
)

var rootCmd = &cobra.Command{
	Use:   "github-org-ingest",
	Short: "GitHub organization ingestion tool",
	Long: `A CLI tool for ingesting GitHub organization structure into a local catalog.

This tool reads repositories, users, teams and team membership from a
GitHub organization, reconciles the team hierarchy and membership, and
stores the resulting entity set locally.`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [org-url]",
	Short: "Ingest an organization from GitHub",
	Long:  `Read the full structure of a GitHub organization (by URL, e.g. https://github.com/my-org) and store it locally.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover organizations visible to the configured token",
	Long: `List every GitHub organization the configured token can see, as URLs.

Each URL can be passed to 'ingest', or use --ingest to ingest all of them
in one go.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show ingested catalog data",
}

var showReposCmd = &cobra.Command{
	Use:   "repos [org]",
	Short: "Show ingested repositories",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRepos,
}

var showUsersCmd = &cobra.Command{
	Use:   "users [org]",
	Short: "Show ingested users with their team memberships",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowUsers,
}

var showTeamsCmd = &cobra.Command{
	Use:   "teams [org]",
	Short: "Show ingested teams",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowTeams,
}

var showTeamCmd = &cobra.Command{
	Use:   "team [org] [slug]",
	Short: "Show a specific team",
	Args:  cobra.ExactArgs(2),
	RunE:  runShowTeam,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	showReposCmd.Flags().BoolVar(&includeArchived, "archived", false, "include archived repositories")
	discoverCmd.Flags().BoolVar(&ingestAll, "ingest", false, "ingest every discovered organization")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showReposCmd)
	showCmd.AddCommand(showUsersCmd)
	showCmd.AddCommand(showTeamsCmd)
	showCmd.AddCommand(showTeamCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	orgURL := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	svc := ingest.NewService(cfg.GitHubGraphQLURL, cfg.GitHubToken, store)

	run, ok, err := svc.IngestURL(context.Background(), orgURL)
	if err != nil {
		return fmt.Errorf("failed to ingest: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s does not address an organization root (expected e.g. https://github.com/my-org)", orgURL)
	}

	fmt.Printf("Ingested organization %s\n", run.Org)
	fmt.Printf("Repositories: %d (%d matching)\n", run.TotalRepos, run.MatchingRepos)
	fmt.Printf("Users: %d\n", run.TotalUsers)
	fmt.Printf("Teams: %d\n", run.TotalTeams)
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if ingestAll {
		store, err := getStorage(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		svc := ingest.NewService(cfg.GitHubGraphQLURL, cfg.GitHubToken, store)
		locations, err := svc.DiscoverOrgs(context.Background())
		if err != nil {
			return fmt.Errorf("failed to discover organizations: %w", err)
		}

		for _, location := range locations {
			run, ok, err := svc.IngestURL(context.Background(), location.Target)
			if err != nil {
				return fmt.Errorf("failed to ingest %s: %w", location.Target, err)
			}
			if !ok {
				continue
			}
			fmt.Printf("Ingested %s: %d repositories (%d matching), %d users, %d teams\n",
				run.Org, run.TotalRepos, run.MatchingRepos, run.TotalUsers, run.TotalTeams)
		}
		return nil
	}

	reader := ingest.NewOrganizationReader(githubql.NewClient(cfg.GitHubGraphQLURL, cfg.GitHubToken))
	locations, err := ingest.NewServiceWithReader(reader, nil).DiscoverOrgs(context.Background())
	if err != nil {
		return fmt.Errorf("failed to discover organizations: %w", err)
	}

	if outputJSON {
		return printJSON(locations)
	}

	fmt.Printf("\nOrganizations: %d\n\n", len(locations))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Type", "URL"})
	for _, location := range locations {
		table.Append([]string{location.Type, location.Target})
	}
	table.Render()

	return nil
}

func getCatalog() (catalog.Catalog, storage.Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := getStorage(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return catalog.NewCatalog(store), store, nil
}

func runShowRepos(cmd *cobra.Command, args []string) error {
	org := args[0]

	cat, store, err := getCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	repos, err := cat.GetRepositories(context.Background(), org, includeArchived)
	if err != nil {
		return fmt.Errorf("failed to get repositories: %w", err)
	}

	if outputJSON {
		return printJSON(repos)
	}

	fmt.Printf("\nRepositories: %s\n\n", org)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "URL", "Archived"})
	for _, r := range repos {
		table.Append([]string{r.Name, r.URL, fmt.Sprintf("%t", r.IsArchived)})
	}
	table.Render()

	return nil
}

func runShowUsers(cmd *cobra.Command, args []string) error {
	org := args[0]

	cat, store, err := getCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := cat.GetUsers(context.Background(), org)
	if err != nil {
		return fmt.Errorf("failed to get users: %w", err)
	}

	if outputJSON {
		return printJSON(users)
	}

	fmt.Printf("\nUsers: %s\n\n", org)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Login", "Name", "Email", "Teams"})
	for _, u := range users {
		table.Append([]string{u.Login, u.Name, u.Email, strings.Join(u.MemberOf, ", ")})
	}
	table.Render()

	return nil
}

func runShowTeams(cmd *cobra.Command, args []string) error {
	org := args[0]

	cat, store, err := getCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	teams, err := cat.GetTeams(context.Background(), org)
	if err != nil {
		return fmt.Errorf("failed to get teams: %w", err)
	}

	if outputJSON {
		return printJSON(teams)
	}

	fmt.Printf("\nTeams: %s\n\n", org)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Slug", "Name", "Parent", "Members"})
	for _, t := range teams {
		table.Append([]string{t.Slug, t.Name, t.ParentSlug, fmt.Sprintf("%d", len(t.Members))})
	}
	table.Render()

	return nil
}

func runShowTeam(cmd *cobra.Command, args []string) error {
	org := args[0]
	slug := args[1]

	cat, store, err := getCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	team, err := cat.GetTeam(context.Background(), org, slug)
	if err != nil {
		return fmt.Errorf("failed to get team: %w", err)
	}

	if outputJSON {
		return printJSON(team)
	}

	fmt.Printf("\nTeam: %s/%s\n\n", org, team.Slug)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Slug", team.Slug})
	table.Append([]string{"Combined slug", team.CombinedSlug})
	table.Append([]string{"Name", team.Name})
	table.Append([]string{"Description", team.Description})
	table.Append([]string{"Parent", team.ParentSlug})
	table.Append([]string{"Members", strings.Join(team.Members, ", ")})
	table.Render()

	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
