package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/folio/internal/pkg/jwt"
	"github.com/mx-space/folio/internal/pkg/response"
)

const (
	ContextKeySubject = "subject"
	AdminRole         = "admin"
)

// Auth requires a valid admin bearer token.
func Auth(issuer *jwt.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := issuer.Parse(extractToken(c))
		if err != nil || claims.Role != AdminRole {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}

// OptionalAuth records the subject of a valid token but never blocks.
func OptionalAuth(issuer *jwt.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if claims, err := issuer.Parse(token); err == nil && claims.Role == AdminRole {
				c.Set(ContextKeySubject, claims.Subject)
			}
		}
		c.Next()
	}
}

// CurrentSubject returns the authenticated subject, or "".
func CurrentSubject(c *gin.Context) string {
	v, _ := c.Get(ContextKeySubject)
	s, _ := v.(string)
	return s
}

// IsAuthenticated returns true if the request carried a valid admin token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentSubject(c) != ""
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
