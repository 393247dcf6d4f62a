package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

const (
	CodeUserDeactivated     = "AUTH_USER_DEACTIVATED"
	CodeUserPendingApproval = "AUTH_USER_PENDING_APPROVAL"
)

// Authenticator resolves a verified identity to a local user.
type Authenticator interface {
	Authenticate(ctx context.Context, p *utils.Principal) (*models.User, error)
}

// AuthMiddleware verifies the identity token, maps it onto a local user and
// stores it on the context as "user", "user_id" and "role". Websocket upgrades
// may pass the token in the "token" query parameter instead.
func AuthMiddleware(verifier *utils.IdentityVerifier, users Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, utils.ErrTokenExpired) {
				msg = "Token expired"
			}
			utils.InfoLogger.WithField("path", c.Request.URL.Path).Debugf("token rejected: %v", err)
			utils.RespondError(c, http.StatusUnauthorized, errors.New(msg))
			c.Abort()
			return
		}

		user, err := users.Authenticate(c.Request.Context(), principal)
		switch {
		case errors.Is(err, services.ErrUserDeactivated):
			utils.RespondErrorCode(c, http.StatusUnauthorized, CodeUserDeactivated, err)
			c.Abort()
			return
		case errors.Is(err, services.ErrUserPendingApproval):
			utils.RespondErrorCode(c, http.StatusForbidden, CodeUserPendingApproval, err)
			c.Abort()
			return
		case errors.Is(err, services.ErrUserNotProvisioned):
			utils.RespondError(c, http.StatusForbidden, err)
			c.Abort()
			return
		case err != nil:
			utils.ErrorLogger.Errorf("Failed to authenticate user: %v", err)
			utils.RespondError(c, http.StatusInternalServerError, errors.New("Authentication failed"))
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("role", user.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}
	// Browsers cannot set headers on a websocket handshake.
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
