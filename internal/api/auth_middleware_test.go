package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shelfmark/internal/auth"
	"shelfmark/internal/config"
	"shelfmark/internal/entity"
	"shelfmark/internal/model"
)

// authFakeRepo serves the lookups the authentication and permission stages
// need. Unimplemented methods panic through the embedded nil interface.
type authFakeRepo struct {
	model.Repository

	users       map[uint]*entity.DbUser
	permissions map[uint]*entity.DbUserPermission
}

func (f *authFakeRepo) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *authFakeRepo) GetPermissionByUserID(ctx context.Context, userID uint) (*entity.DbUserPermission, error) {
	permission, ok := f.permissions[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return permission, nil
}

func newAuthTestHandler(t *testing.T, cfg config.Config, repo *authFakeRepo) *HTTPHandler {
	t.Helper()
	manager, err := auth.NewManager("test-secret", "test", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}
	return &HTTPHandler{cfg: cfg, repo: repo, authManager: manager}
}

func whoamiRouter(h *HTTPHandler, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{h.AuthMiddleware()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	r.GET("/whoami", handlers...)
	return r
}

func TestAuthMiddlewareBearerToken(t *testing.T) {
	repo := &authFakeRepo{users: map[uint]*entity.DbUser{}}
	h := newAuthTestHandler(t, config.Config{}, repo)
	router := whoamiRouter(h)

	user := &entity.DbUser{ID: 42, Username: "reader", Email: "reader@example.com"}
	token, _, err := h.authManager.GenerateToken(user)
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		// The scheme must be stripped before parsing, not kept in its place.
		{name: "BearerPrefix", header: "Bearer " + token, expectedStatus: http.StatusOK},
		{name: "LowercaseScheme", header: "bearer " + token, expectedStatus: http.StatusOK},
		{name: "RawToken", header: token, expectedStatus: http.StatusOK},
		{name: "SchemeOnly", header: "Bearer ", expectedStatus: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer not-a-token", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", tt.header)
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareRejectsForeignToken(t *testing.T) {
	repo := &authFakeRepo{users: map[uint]*entity.DbUser{}}
	h := newAuthTestHandler(t, config.Config{}, repo)
	router := whoamiRouter(h)

	foreign, err := auth.NewManager("other-secret", "test", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, _, err := foreign.GenerateToken(&entity.DbUser{ID: 42, Username: "reader", Email: "reader@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareSessionCookie(t *testing.T) {
	now := time.Now().UTC()
	repo := &authFakeRepo{users: map[uint]*entity.DbUser{
		7: {ID: 7, Username: "reader", Email: "reader@example.com"},
		8: {ID: 8, Username: "ghost", Email: "ghost@example.com", DeletedAt: &now},
	}}
	h := newAuthTestHandler(t, config.Config{}, repo)
	router := whoamiRouter(h)

	tests := []struct {
		name           string
		cookie         string
		expectedStatus int
	}{
		{name: "KnownUser", cookie: "7", expectedStatus: http.StatusOK},
		{name: "DeletedUser", cookie: "8", expectedStatus: http.StatusUnauthorized},
		{name: "UnknownUser", cookie: "99", expectedStatus: http.StatusUnauthorized},
		{name: "NotANumber", cookie: "abc", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAuthMiddlewareRequiresCredentials(t *testing.T) {
	repo := &authFakeRepo{users: map[uint]*entity.DbUser{}}
	h := newAuthTestHandler(t, config.Config{}, repo)
	router := whoamiRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	repo := &authFakeRepo{
		users: map[uint]*entity.DbUser{
			1: {ID: 1, Username: "member", Email: "member@example.com"},
			2: {ID: 2, Username: "mod", Email: "mod@example.com"},
			3: {ID: 3, Username: "admin", Email: "admin@example.com"},
			4: {ID: 4, Username: "orphan", Email: "orphan@example.com"},
		},
		permissions: map[uint]*entity.DbUserPermission{
			1: {ID: 1, UserID: 1, Member: true},
			2: {ID: 2, UserID: 2, Member: true, Moderator: true},
			3: {ID: 3, UserID: 3, Member: true, Administrator: true},
			// User 4 has no permission row.
		},
	}
	h := newAuthTestHandler(t, config.Config{AdminImpliesModerator: true}, repo)
	router := whoamiRouter(h, h.RequireRole(RoleModerator))

	tests := []struct {
		name           string
		userID         string
		expectedStatus int
	}{
		{name: "MemberForbidden", userID: "1", expectedStatus: http.StatusForbidden},
		{name: "ModeratorAllowed", userID: "2", expectedStatus: http.StatusOK},
		{name: "AdminInheritsModerator", userID: "3", expectedStatus: http.StatusOK},
		// A user with no permission row is an integrity fault, not forbidden.
		{name: "MissingPermissionRow", userID: "4", expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.userID})
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestPermitsAdminImpliesModeratorFlag(t *testing.T) {
	admin := &entity.DbUserPermission{UserID: 1, Member: true, Administrator: true}
	moderator := &entity.DbUserPermission{UserID: 2, Member: true, Moderator: true}

	tests := []struct {
		name       string
		implies    bool
		permission *entity.DbUserPermission
		role       Role
		want       bool
	}{
		{name: "AdminAsModeratorWhenEnabled", implies: true, permission: admin, role: RoleModerator, want: true},
		{name: "AdminAsModeratorWhenDisabled", implies: false, permission: admin, role: RoleModerator, want: false},
		{name: "AdminAsAdmin", implies: false, permission: admin, role: RoleAdministrator, want: true},
		{name: "ModeratorAsModerator", implies: false, permission: moderator, role: RoleModerator, want: true},
		{name: "ModeratorAsAdmin", implies: true, permission: moderator, role: RoleAdministrator, want: false},
		{name: "NilPermission", implies: true, permission: nil, role: RoleModerator, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HTTPHandler{cfg: config.Config{AdminImpliesModerator: tt.implies}}
			if got := h.permits(tt.permission, tt.role); got != tt.want {
				t.Fatalf("permits = %v, want %v", got, tt.want)
			}
		})
	}
}
