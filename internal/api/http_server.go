package api

import (
	"strings"
	"time"

	"shelfmark/internal/auth"
	"shelfmark/internal/config"
	"shelfmark/internal/mailer"
	"shelfmark/internal/model"
	"shelfmark/internal/service"
	"shelfmark/internal/storage"
)

// HTTPHandler carries the collaborators shared by all route handlers.
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	authManager       *auth.Manager
	accounts          *service.AccountService
}

// NewHTTPHandler creates the HTTP handler wiring.
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, m mailer.Mailer) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationDays) * 24 * time.Hour
	authManager, err := auth.NewManager(cfg.APISecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}

	handler := &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		authManager:       authManager,
		accounts:          service.NewAccountService(repo, m),
	}

	return handler, nil
}

func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

func (h *HTTPHandler) publicURL(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	base := h.storagePublicBase
	if base == "" {
		base = "/files"
	}
	return base + "/" + strings.TrimLeft(trimmed, "/")
}
