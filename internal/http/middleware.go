package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-hub/internal/domain"
)

const contextUserKey = "authUser"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// authRequired verifies the bearer token and loads the account behind it.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided, access denied"})
			return
		}

		userID, err := h.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}

		user, err := h.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Account is deactivated"})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// optionalAuth loads the account when a valid token is present, and continues
// anonymously otherwise.
func (h *Handler) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := h.tokens.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		user, err := h.users.GetByID(c.Request.Context(), userID)
		if err != nil || !user.IsActive {
			c.Next()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// ownerRequired restricts the route to the distinguished owner account.
// Must run after authRequired.
func (h *Handler) ownerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != domain.RoleOwner {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Owner access required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*domain.User)
	return user
}
