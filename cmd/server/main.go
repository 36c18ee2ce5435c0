package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shelfmark/internal/api"
	"shelfmark/internal/config"
	"shelfmark/internal/mailer"
	"shelfmark/internal/model"
	"shelfmark/internal/storage"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to parse config")
	}

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialise repository")
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialise storage")
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, mailer.NewMailer(cfg))
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialise http handler")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	// Account lifecycle, open to anonymous callers.
	userGroup := apiGroup.Group("/user")
	userGroup.POST("", httpHandler.Register)
	userGroup.POST("/login", httpHandler.Login)
	userGroup.POST("/login/session", httpHandler.LoginSession)
	userGroup.POST("/logout", httpHandler.Logout)
	userGroup.POST("/confirm", httpHandler.Confirm)
	userGroup.POST("/password/forgot", httpHandler.ForgotPassword)
	userGroup.POST("/password/reset", httpHandler.ResetPassword)

	authed := apiGroup.Group("")
	authed.Use(httpHandler.AuthMiddleware())

	authed.GET("/user", httpHandler.RequireRole(api.RoleModerator), httpHandler.ListUsers)
	authed.GET("/user/me", httpHandler.Me)
	authed.GET("/user/:id", httpHandler.GetUser)
	authed.PUT("/user/:id", httpHandler.UpdateUser)
	authed.DELETE("/user/:id", httpHandler.DeleteUser)

	// Permission rows are read by user id, mutated by row id.
	authed.GET("/user/permission/:id", httpHandler.GetPermission)
	permissionAdmin := authed.Group("/user/permission")
	permissionAdmin.Use(httpHandler.RequireRole(api.RoleAdministrator))
	permissionAdmin.POST("", httpHandler.CreatePermission)
	permissionAdmin.PUT("/:id", httpHandler.UpdatePermission)
	permissionAdmin.DELETE("/:id", httpHandler.DeletePermission)

	// The catalogue is readable without an account.
	apiGroup.GET("/book", httpHandler.ListBooks)
	apiGroup.GET("/book/:id", httpHandler.GetBook)
	apiGroup.GET("/book/chapter", httpHandler.ListChapters)
	apiGroup.GET("/book/chapter/:id", httpHandler.GetChapter)
	apiGroup.GET("/book/cover", httpHandler.ListCovers)
	apiGroup.GET("/book/cover/:id", httpHandler.GetCover)
	apiGroup.GET("/book/name", httpHandler.ListNames)
	apiGroup.GET("/book/name/:id", httpHandler.GetName)
	apiGroup.GET("/book/provider", httpHandler.ListProviders)
	apiGroup.GET("/book/provider/:id", httpHandler.GetProvider)
	apiGroup.GET("/book/tag", httpHandler.ListTags)
	apiGroup.GET("/book/tag/:id", httpHandler.GetTag)

	// Catalogue mutations are moderation work.
	catalogue := authed.Group("/book")
	catalogue.Use(httpHandler.RequireRole(api.RoleModerator))
	catalogue.POST("", httpHandler.CreateBook)
	catalogue.PUT("/:id", httpHandler.UpdateBook)
	catalogue.DELETE("/:id", httpHandler.DeleteBook)
	catalogue.POST("/chapter", httpHandler.CreateChapter)
	catalogue.PUT("/chapter/:id", httpHandler.UpdateChapter)
	catalogue.DELETE("/chapter/:id", httpHandler.DeleteChapter)
	catalogue.POST("/cover", httpHandler.CreateCover)
	catalogue.PUT("/cover/:id", httpHandler.UpdateCover)
	catalogue.DELETE("/cover/:id", httpHandler.DeleteCover)
	catalogue.POST("/name", httpHandler.CreateName)
	catalogue.PUT("/name/:id", httpHandler.UpdateName)
	catalogue.DELETE("/name/:id", httpHandler.DeleteName)
	catalogue.POST("/provider", httpHandler.CreateProvider)
	catalogue.PUT("/provider/:id", httpHandler.UpdateProvider)
	catalogue.DELETE("/provider/:id", httpHandler.DeleteProvider)
	catalogue.POST("/tag", httpHandler.CreateTag)
	catalogue.PUT("/tag/:id", httpHandler.UpdateTag)
	catalogue.DELETE("/tag/:id", httpHandler.DeleteTag)

	// Per-user library state, ownership checked in the handlers.
	authed.POST("/user/bookmark", httpHandler.CreateBookmark)
	authed.GET("/user/bookmark", httpHandler.ListBookmarks)
	authed.GET("/user/bookmark/:id", httpHandler.GetBookmark)
	authed.PUT("/user/bookmark/:id", httpHandler.UpdateBookmark)
	authed.DELETE("/user/bookmark/:id", httpHandler.DeleteBookmark)
	authed.POST("/user/comment", httpHandler.CreateComment)
	authed.GET("/user/comment", httpHandler.ListComments)
	authed.GET("/user/comment/:id", httpHandler.GetComment)
	authed.PUT("/user/comment/:id", httpHandler.UpdateComment)
	authed.DELETE("/user/comment/:id", httpHandler.DeleteComment)
	authed.POST("/user/excluded_tag", httpHandler.CreateExcludedTag)
	authed.GET("/user/excluded_tag", httpHandler.ListExcludedTags)
	authed.PUT("/user/excluded_tag/:id", httpHandler.UpdateExcludedTag)
	authed.DELETE("/user/excluded_tag/:id", httpHandler.DeleteExcludedTag)

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("server starting")
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("server failed")
	}
}

// CORSMiddleware handles cross-origin requests and preflight.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware emits one structured access log line per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
