package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"library-reservation-backend/internal/auth"
)

// Context keys set by RequireAuth.
const (
	CtxStudentID = "student_id"
	CtxIsAdmin   = "is_admin"
)

// RequireAuth verifies the bearer token and stores the caller's identity on
// the request context.
func RequireAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(CtxStudentID, claims.Subject)
		c.Set(CtxIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// RequireAdmin rejects callers whose session is not an admin session. It
// must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// RequireStudent rejects admin sessions on student-only endpoints. It must
// run after RequireAuth.
func RequireStudent() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(CtxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "student access required"})
			return
		}
		c.Next()
	}
}
