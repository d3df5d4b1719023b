package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Identity is the authenticated caller, set by IsLoggedIn.
type Identity struct {
	UserID   uint
	Username string
	Email    string
	IsAdmin  bool
}

// IdentityFrom returns the caller stored by IsLoggedIn.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	// First try to get token from Authorization header
	if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		if len(parts) == 1 {
			return parts[0]
		}
	}

	// If not found in header, try query parameter (for WebSocket)
	return c.Query("token")
}

// IsLoggedIn verifies the token and loads the caller's identity.
func IsLoggedIn(store database.Store, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.Abort(c, http.StatusForbidden, "Login is required.")
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			utils.Abort(c, http.StatusForbidden, "Authentication failed")
			return
		}

		user, err := store.GetUserByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, database.ErrNotFound) {
			utils.Abort(c, http.StatusForbidden, "User not found.")
			return
		}
		if err != nil {
			log.Printf("Error loading user %d: %v", claims.UserID, err)
			utils.Abort(c, http.StatusForbidden, "Authentication failed")
			return
		}
		if !user.IsVerified {
			utils.Abort(c, http.StatusUnauthorized, "User not verified. Please verify your account.")
			return
		}

		c.Set(identityKey, Identity{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsAdmin:  user.IsAdmin,
		})
		c.Next()
	}
}

// IsAdmin requires an admin caller. It must run after IsLoggedIn.
func IsAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			utils.Abort(c, http.StatusForbidden, "Authentication failed")
			return
		}
		if !id.IsAdmin {
			utils.Abort(c, http.StatusUnauthorized, "You don't have the required permissions.")
			return
		}
		c.Next()
	}
}
