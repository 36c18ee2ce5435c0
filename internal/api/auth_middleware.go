package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

const (
	currentUserContextKey = "current-user"

	// SessionCookieName is the cookie set by the session login variant.
	SessionCookieName = "session"
)

// RequestUser is the authenticated identity attached to the request context.
type RequestUser struct {
	ID       uint
	Username string
	Email    string
}

// Role levels checked by the permission stage.
type Role int

const (
	RoleModerator Role = iota
	RoleAdministrator
)

// AuthMiddleware is the authentication stage: it accepts a bearer token in
// the Authorization header (with or without the "Bearer " prefix) or, absent
// that, the session cookie holding the raw user id. The decoded identity is
// attached to the request context.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			h.authenticateBearer(c, authHeader)
			return
		}

		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
			h.authenticateSession(c, cookie)
			return
		}

		AbortWithError(c, http.StatusUnauthorized, ErrUnauthorized)
	}
}

func (h *HTTPHandler) authenticateBearer(c *gin.Context, authHeader string) {
	// Strip the scheme, keep the token. Splitting and keeping index 0 here
	// would hand the literal word "Bearer" to the parser.
	tokenString := authHeader
	if scheme, rest, ok := strings.Cut(authHeader, " "); ok && strings.EqualFold(scheme, "Bearer") {
		tokenString = strings.TrimSpace(rest)
	}
	if tokenString == "" {
		AbortWithError(c, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	claims, err := h.authManager.ParseToken(tokenString)
	if err != nil {
		logrus.WithError(err).Warn("failed to parse bearer token")
		AbortWithError(c, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	c.Set(currentUserContextKey, &RequestUser{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	})
	c.Next()
}

func (h *HTTPHandler) authenticateSession(c *gin.Context, cookie string) {
	userID, err := strconv.ParseUint(strings.TrimSpace(cookie), 10, 64)
	if err != nil || userID == 0 {
		AbortWithError(c, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, uint(userID))
	if err != nil || user.Deleted() {
		AbortWithError(c, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	c.Set(currentUserContextKey, &RequestUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	c.Next()
}

// RequireRole is the permission stage: it loads the caller's permission row
// and rejects callers below the requested level. A user without a permission
// row is a server-side integrity fault, every account owns one.
func (h *HTTPHandler) RequireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			AbortWithError(c, http.StatusUnauthorized, ErrUnauthorized)
			return
		}

		allowed, apiErr, status := h.checkRole(c, user.ID, role)
		if !allowed {
			AbortWithError(c, status, apiErr)
			return
		}
		c.Next()
	}
}

// allowSelfOr passes when the caller owns the targeted resource, otherwise
// it falls back to the role check. On failure the rejection is already
// written and false is returned.
func (h *HTTPHandler) allowSelfOr(c *gin.Context, ownerID uint, role Role) bool {
	user := CurrentUser(c)
	if user == nil {
		AbortWithError(c, http.StatusUnauthorized, ErrUnauthorized)
		return false
	}
	if ownerID != 0 && ownerID == user.ID {
		return true
	}

	allowed, apiErr, status := h.checkRole(c, user.ID, role)
	if !allowed {
		AbortWithError(c, status, apiErr)
		return false
	}
	return true
}

func (h *HTTPHandler) checkRole(c *gin.Context, userID uint, role Role) (bool, APIError, int) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	permission, err := h.repo.GetPermissionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Integrity fault: registration creates the row transactionally.
			logrus.WithField("user_id", userID).Error("user has no permission row")
			return false, ErrInternalError, http.StatusInternalServerError
		}
		logrus.WithError(err).WithField("user_id", userID).Error("failed to load permissions")
		return false, ErrInternalError, http.StatusInternalServerError
	}

	if h.permits(permission, role) {
		return true, APIError{}, 0
	}
	return false, ErrForbidden, http.StatusForbidden
}

// permits evaluates a role flag against the permission row. Whether the
// administrator flag carries moderator-level access is a configuration
// choice, not an assumption.
func (h *HTTPHandler) permits(permission *entity.DbUserPermission, role Role) bool {
	if permission == nil {
		return false
	}
	switch role {
	case RoleAdministrator:
		return permission.Administrator
	case RoleModerator:
		if permission.Moderator {
			return true
		}
		return h.cfg.AdminImpliesModerator && permission.Administrator
	default:
		return false
	}
}

// CurrentUser retrieves the authenticated identity from the gin context.
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}

const dbTimeout = 5 * time.Second
