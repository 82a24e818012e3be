package auth

import (
	"net/http"
	"strings"

	"github.com/abduss/docstore/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type contextKey string

const serviceContextKey contextKey = "docstoreService"

// AuthMiddleware validates bearer tokens and records the calling service.
func AuthMiddleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := service.ValidateToken(token)
		if err != nil {
			logger.FromContext(c).Warn("rejected service token",
				zap.String("path", c.FullPath()),
				zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(string(serviceContextKey), claims.Service)
		c.Next()
	}
}

// CurrentService returns the authenticated caller's service name.
func CurrentService(c *gin.Context) (string, bool) {
	value, exists := c.Get(string(serviceContextKey))
	if !exists {
		return "", false
	}
	name, ok := value.(string)
	return name, ok
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// RequestLogger returns the request's logger tagged with its correlation ID
// and, once authenticated, the calling service.
func RequestLogger(c *gin.Context) *zap.Logger {
	log := logger.FromContext(c)
	if name, ok := CurrentService(c); ok {
		log = log.With(zap.String("service", name))
	}
	return log
}
