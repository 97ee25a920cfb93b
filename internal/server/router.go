package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/estatehub/internal/export"
	"github.com/joseph-ayodele/estatehub/internal/guard"
	"github.com/joseph-ayodele/estatehub/internal/services/profile"
	"github.com/joseph-ayodele/estatehub/internal/session"
)

// Options configures the HTTP router.
type Options struct {
	Profiles   *profile.Service
	Export     *export.Service
	Sessions   session.Store
	Guard      guard.Guard
	CookieName string
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	// Health reports storage readiness for /healthz.
	Health func(ctx context.Context) error
	Logger *slog.Logger
}

// Router owns the HTTP handlers of the profile API.
type Router struct {
	profiles     *profile.Service
	export       *export.Service
	sessions     session.Store
	guard        guard.Guard
	cookieName   string
	secureCookie bool
	health       func(ctx context.Context) error
	logger       *slog.Logger
}

// NewRouter builds the gin engine serving the profile API.
func NewRouter(opts Options) *gin.Engine {
	r := &Router{
		profiles:     opts.Profiles,
		export:       opts.Export,
		sessions:     opts.Sessions,
		guard:        opts.Guard,
		cookieName:   opts.CookieName,
		secureCookie: opts.SecureCookie,
		health:       opts.Health,
		logger:       opts.Logger,
	}
	if r.cookieName == "" {
		r.cookieName = "estatehub_session"
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(r.logger), r.resolveSession())

	engine.GET("/healthz", r.healthz)

	v1 := engine.Group("/v1")
	v1.GET("/guard", r.evaluateGuard)
	v1.DELETE("/session", r.endSession)

	authed := v1.Group("", r.requireSession())
	authed.POST("/session/provision", r.provision)

	profiles := authed.Group("/profiles")
	profiles.GET("", r.listProfiles)
	profiles.POST("", r.createProfile)
	profiles.GET("/active", r.getActiveProfile)
	profiles.PUT("/active", r.switchActiveProfile)
	profiles.GET("/export.xlsx", r.exportProfiles)
	profiles.GET("/:id", r.getProfile)
	profiles.PATCH("/:id", r.updateProfile)
	profiles.DELETE("/:id", r.deleteProfile)
	profiles.GET("/:id/documents", r.listDocuments)
	profiles.POST("/:id/documents", r.submitDocument)
	profiles.DELETE("/:id/documents/:docID", r.deleteDocument)
	profiles.POST("/:id/resubmit", r.resubmit)
	profiles.GET("/:id/verifications", r.history)
	profiles.GET("/:id/roles", r.listRoles)
	profiles.POST("/:id/roles", r.grantRole)
	profiles.DELETE("/:id/roles/:role", r.revokeRole)

	admin := authed.Group("/admin", r.requireReviewer())
	admin.POST("/profiles/:id/review", r.review)

	dashboard := v1.Group("/dashboard", r.guarded())
	dashboard.GET("", r.dashboard)

	return engine
}

func (r *Router) healthz(c *gin.Context) {
	if r.health != nil {
		if err := r.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
