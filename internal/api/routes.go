package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(gin.Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		orgs := v1.Group("/orgs/:org")
		{
			orgs.GET("", handler.GetOrgSummary)
			orgs.GET("/repos", handler.GetRepositories)
			orgs.GET("/locations", handler.GetLocations)
			orgs.GET("/ingestions", handler.GetIngestionRuns)

			users := orgs.Group("/users")
			{
				users.GET("", handler.GetUsers)
				users.GET("/:login", handler.GetUser)
			}

			teams := orgs.Group("/teams")
			{
				teams.GET("", handler.GetTeams)
				teams.GET("/tree", handler.GetTeamTree)
				teams.GET("/:slug", handler.GetTeam)
			}
		}
	}

	return router
}
