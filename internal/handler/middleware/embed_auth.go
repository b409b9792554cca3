package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/feedbackhub-api/internal/embedtoken"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/makkenzo/feedbackhub-api/internal/metrics"
	"go.uber.org/zap"
)

const (
	EmbedTokenHeader     = "X-Embed-Token"
	embedTokenQueryParam = "token"
	embedProjectIDKey    = "embedProjectID"
)

// EmbedAuthMiddleware admits widget requests carrying a valid embed token
// and pins the request to the token's project.
func EmbedAuthMiddleware(tokens *embedtoken.Service, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("EmbedAuthMiddleware")
	return func(c *gin.Context) {
		raw := c.GetHeader(EmbedTokenHeader)
		if raw == "" {
			raw = c.Query(embedTokenQueryParam)
		}
		if raw == "" {
			log.Debug("Embed token is missing")
			metrics.EmbedTokens.WithLabelValues("verify", "missing").Inc()
			_ = c.Error(ierr.Deny(ierr.ReasonInvalidEmbedToken))
			c.Abort()
			return
		}

		tok, err := tokens.Parse(raw)
		if err != nil {
			log.Info("Embed token rejected", zap.Error(err))
			metrics.EmbedTokens.WithLabelValues("verify", "rejected").Inc()
			_ = c.Error(ierr.Deny(ierr.ReasonInvalidEmbedToken))
			c.Abort()
			return
		}

		projectID, err := strconv.ParseInt(tok.ProjectID, 10, 64)
		if err != nil || projectID <= 0 {
			log.Info("Embed token names a non-numeric project", zap.String("project_id", tok.ProjectID))
			metrics.EmbedTokens.WithLabelValues("verify", "rejected").Inc()
			_ = c.Error(ierr.Deny(ierr.ReasonInvalidEmbedToken))
			c.Abort()
			return
		}

		metrics.EmbedTokens.WithLabelValues("verify", "ok").Inc()
		c.Set(embedProjectIDKey, projectID)
		c.Next()
	}
}

// EmbedProjectID returns the project pinned by EmbedAuthMiddleware.
func EmbedProjectID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(embedProjectIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}
