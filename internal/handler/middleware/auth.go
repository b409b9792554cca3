package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/makkenzo/feedbackhub-api/internal/service"
	"go.uber.org/zap"
)

const (
	authorizationHeader     = "Authorization"
	bearerPrefix            = "Bearer "
	sessionClaimsContextKey = "sessionClaims"
)

func AuthMiddleware(validator service.TokenValidator, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			log.Debug("Authorization header is missing")
			_ = c.Error(fmt.Errorf("%w: authorization header required", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			log.Debug("Authorization header format is invalid")
			_ = c.Error(fmt.Errorf("%w: invalid authorization header format", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
		if tokenString == "" {
			log.Debug("Token is missing after Bearer prefix")
			_ = c.Error(fmt.Errorf("%w: token missing", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			log.Warn("Token validation failed", zap.Error(err))
			_ = c.Error(err)
			c.Abort()
			return
		}

		log.Debug("Session token validated, setting claims in context", zap.String("subject", claims.Subject))
		c.Set(sessionClaimsContextKey, claims)

		c.Next()
	}
}

func GetUserClaims(c *gin.Context) *service.SessionClaims {
	value, exists := c.Get(sessionClaimsContextKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*service.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// UserID returns the authenticated subject, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	if claims := GetUserClaims(c); claims != nil {
		return claims.Subject
	}
	return ""
}
