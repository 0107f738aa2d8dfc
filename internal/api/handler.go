package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/github-org-ingest/internal/catalog"
	apperrors "github.com/kurihiro0119/github-org-ingest/internal/errors"
)

// Handler handles API requests
type Handler struct {
	catalog catalog.Catalog
}

// NewHandler creates a new API handler
func NewHandler(cat catalog.Catalog) *Handler {
	return &Handler{
		catalog: cat,
	}
}

// GetOrgSummary returns entity counts for an organization
// GET /api/v1/orgs/:org
func (h *Handler) GetOrgSummary(c *gin.Context) {
	org := c.Param("org")

	summary, err := h.catalog.GetOrgSummary(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summary,
	})
}

// GetRepositories returns stored repositories
// GET /api/v1/orgs/:org/repos?archived=true
func (h *Handler) GetRepositories(c *gin.Context) {
	org := c.Param("org")
	includeArchived, err := parseBoolQuery(c, "archived", false)
	if err != nil {
		respondError(c, err)
		return
	}

	repos, err := h.catalog.GetRepositories(c.Request.Context(), org, includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": repos,
	})
}

// GetUsers returns stored users with membership resolved
// GET /api/v1/orgs/:org/users
func (h *Handler) GetUsers(c *gin.Context) {
	org := c.Param("org")

	users, err := h.catalog.GetUsers(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": users,
	})
}

// GetUser returns a single user
// GET /api/v1/orgs/:org/users/:login
func (h *Handler) GetUser(c *gin.Context) {
	org := c.Param("org")
	login := c.Param("login")

	user, err := h.catalog.GetUser(c.Request.Context(), org, login)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": user,
	})
}

// GetTeams returns stored teams with members resolved
// GET /api/v1/orgs/:org/teams
func (h *Handler) GetTeams(c *gin.Context) {
	org := c.Param("org")

	teams, err := h.catalog.GetTeams(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": teams,
	})
}

// GetTeamTree returns the team hierarchy as a forest
// GET /api/v1/orgs/:org/teams/tree
func (h *Handler) GetTeamTree(c *gin.Context) {
	org := c.Param("org")

	tree, err := h.catalog.GetTeamTree(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": tree,
	})
}

// GetTeam returns a single team
// GET /api/v1/orgs/:org/teams/:slug
func (h *Handler) GetTeam(c *gin.Context) {
	org := c.Param("org")
	slug := c.Param("slug")

	team, err := h.catalog.GetTeam(c.Request.Context(), org, slug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": team,
	})
}

// GetLocations returns the emitted repository locations
// GET /api/v1/orgs/:org/locations
func (h *Handler) GetLocations(c *gin.Context) {
	org := c.Param("org")

	locations, err := h.catalog.GetLocations(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": locations,
	})
}

// GetIngestionRuns returns ingestion run history
// GET /api/v1/orgs/:org/ingestions
func (h *Handler) GetIngestionRuns(c *gin.Context) {
	org := c.Param("org")

	runs, err := h.catalog.GetIngestionRuns(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// parseBoolQuery parses a boolean query parameter with a default value
func parseBoolQuery(c *gin.Context, key string, defaultValue bool) (bool, error) {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, apperrors.NewBadRequestError(fmt.Sprintf("invalid %s value %q", key, valueStr))
	}
	return value, nil
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrCodeInternal,
			"message": err.Error(),
		},
	})
}
