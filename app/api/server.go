package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Mutating endpoints are only exposed when an access key is configured.
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/jobs", handler.APIListJobs)
			api.POST("/jobs/:name/trigger", handler.APITriggerJob)

			api.GET("/feeds", handler.APIListFeeds)
			api.POST("/feeds", handler.APICreateFeed)
			api.POST("/feeds/:id/deactivate", handler.APIDeactivateFeed)

			api.GET("/recipients", handler.APIListRecipients)
			api.POST("/recipients", handler.APIUpsertRecipient)
			api.PATCH("/recipients/:id", handler.APIUpdateRecipientSettings)
			api.POST("/recipients/:id/deactivate", handler.APIDeactivateRecipient)

			api.GET("/recipients/:id/subscriptions", handler.APIListSubscriptions)
			api.POST("/recipients/:id/subscriptions", handler.APISubscribe)
			api.DELETE("/recipients/:id/subscriptions/:feedID", handler.APIUnsubscribe)

			api.GET("/items", handler.APIListRecentItems)
			api.GET("/deliveries", handler.APIListRecentDeliveries)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Warn("API endpoints disabled (API access key not set)")
	}

	return r
}

// authMiddleware accepts the key via X-API-Key or an Authorization bearer token.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
