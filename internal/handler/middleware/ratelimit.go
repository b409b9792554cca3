package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"go.uber.org/zap"
)

// ClientRateLimitMiddleware limits requests per client IP. Mount it before
// EmbedAuthMiddleware so requests with bad tokens are counted too.
// rate uses the limiter format, e.g. "120-M".
func ClientRateLimitMiddleware(store limiter.Store, rate string, logger *zap.Logger) (gin.HandlerFunc, error) {
	return newRateLimitMiddleware(store, rate, logger.Named("ClientRateLimitMiddleware"), func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	})
}

// RateLimitMiddleware limits requests per embedded project. It must run
// after EmbedAuthMiddleware.
func RateLimitMiddleware(store limiter.Store, rate string, logger *zap.Logger) (gin.HandlerFunc, error) {
	return newRateLimitMiddleware(store, rate, logger.Named("RateLimitMiddleware"), func(c *gin.Context) string {
		id, _ := EmbedProjectID(c)
		return "project:" + strconv.FormatInt(id, 10)
	})
}

func newRateLimitMiddleware(store limiter.Store, rate string, log *zap.Logger, key func(c *gin.Context) string) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(store, parsed)

	m := mgin.NewMiddleware(instance,
		mgin.WithKeyGetter(key),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			log.Info("Rate limit reached", zap.String("client_ip", c.ClientIP()), zap.String("path", c.FullPath()))
			_ = c.Error(ierr.Deny(ierr.ReasonRateLimited))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// Fail open when the store is unreachable.
			log.Warn("Rate limiter store failed", zap.Error(err))
			c.Next()
		}),
	)
	return m, nil
}
