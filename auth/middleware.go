package auth

import (
	"net/http"
	"strings"

	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/gin-gonic/gin"
)

// ClaimsContextKey holds the verified *Claims in the gin context
const ClaimsContextKey = "claims"

// Middleware authenticates bearer tokens for Gin
type Middleware struct {
	tokens      *TokenService
	revocations *TokenRevocationList
	required    bool
}

// NewMiddleware creates the authentication middleware. tokens may be nil when
// no signing key is configured, in which case every request is anonymous.
// revocations may be nil when Redis is disabled.
func NewMiddleware(tokens *TokenService, revocations *TokenRevocationList, required bool) *Middleware {
	slogging.Get().Info("Initializing authentication middleware required=%v", required)
	return &Middleware{tokens: tokens, revocations: revocations, required: required}
}

// Authenticate verifies the bearer token when present and records the
// subject for created_by. Missing tokens are rejected only when required.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := slogging.GetContextLogger(c)

		header := c.GetHeader("Authorization")
		if header == "" || m.tokens == nil {
			if m.required {
				logger.Warn("Authentication failed: missing authorization header client_ip=%v", c.ClientIP())
				unauthorized(c, "Authorization header is required")
				return
			}
			c.Next()
			return
		}

		scheme, tokenString, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			logger.Warn("Authentication failed: invalid authorization header format client_ip=%v", c.ClientIP())
			unauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := m.tokens.VerifyToken(tokenString)
		if err != nil {
			logger.Warn("Authentication failed: %v", err)
			unauthorized(c, "Invalid or expired token")
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), tokenString, claims)
			if err != nil {
				logger.Error("Token revocation check failed, rejecting request: %v", err)
				unauthorized(c, "Unable to verify token")
				return
			}
			if revoked {
				logger.Warn("Authentication failed: token revoked subject=%s", claims.Subject)
				unauthorized(c, "Token has been revoked")
				return
			}
		}

		c.Set(slogging.UserKey, claims.Subject)
		c.Set(ClaimsContextKey, claims)
		logger.Debug("Token validated subject=%s", claims.Subject)
		c.Next()
	}
}

// ClaimsFromContext returns the verified claims, if any
func ClaimsFromContext(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

func unauthorized(c *gin.Context, description string) {
	c.Header("WWW-Authenticate", `Bearer realm="personnel"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":             "unauthorized",
		"error_description": description,
	})
}
