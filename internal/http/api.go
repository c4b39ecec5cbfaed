package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homelist/internal/ratelimit"
	"homelist/internal/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP layer routes to. Photos may be nil.
type Deps struct {
	Users    service.UserService
	Auth     service.AuthService
	Listings service.ListingService
	Photos   service.PhotoService
	Boot     service.BootService
	Cache    Pinger
	Limiter  *ratelimit.Limiter
	Logger   *logrus.Logger
	// TrustedProxies may set the client IP through X-Forwarded-For. Empty
	// means the socket address is always used.
	TrustedProxies []string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	auth     service.AuthService
	listings service.ListingService
	photos   service.PhotoService
	boot     service.BootService
	cache    Pinger
	limiter  *ratelimit.Limiter
	logger   *logrus.Logger
	proxies  []string
}

func NewHandler(deps Deps) *Handler {
	registerValidators()
	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.New(5, 0)
	}
	return &Handler{
		users:    deps.Users,
		auth:     deps.Auth,
		listings: deps.Listings,
		photos:   deps.Photos,
		boot:     deps.Boot,
		cache:    deps.Cache,
		limiter:  limiter,
		logger:   logger,
		proxies:  deps.TrustedProxies,
	}
}

// NewRouter builds a gin engine with the middleware chain and all routes.
// The login limiter keys on ClientIP, so only the configured proxies may
// override the socket address.
func NewRouter(h *Handler) (*gin.Engine, error) {
	router := gin.New()
	router.RedirectTrailingSlash = false
	if err := router.SetTrustedProxies(h.proxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	router.Use(gin.Recovery(), requestIDMiddleware(), accessLogMiddleware(h.logger), corsMiddleware())
	h.RegisterRoutes(router)
	return router, nil
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	requireUser := h.authMiddleware()

	router.POST("/token", h.loginRateLimit(), h.login)
	router.POST("/logout", requireUser, h.logout)
	router.GET("/health", h.health)

	handleBoth(router, http.MethodPost, "/users", h.register)
	handleBoth(router, http.MethodGet, "/users/me", requireUser, h.me)
	handleBoth(router, http.MethodPut, "/users/me", requireUser, h.updateMe)

	handleBoth(router, http.MethodGet, "/listing", h.listListings)
	handleBoth(router, http.MethodPost, "/listing", requireUser, h.createListing)
	handleBoth(router, http.MethodGet, "/listing/:id", h.getListing)
	handleBoth(router, http.MethodPut, "/listing/:id", requireUser, h.updateListing)
	handleBoth(router, http.MethodDelete, "/listing/:id", requireUser, h.deleteListing)

	handleBoth(router, http.MethodGet, "/listing/:id/photos", h.listPhotos)
	handleBoth(router, http.MethodPost, "/listing/:id/photos", requireUser, h.uploadPhoto)
	handleBoth(router, http.MethodDelete, "/listing/:id/photos/:photo", requireUser, h.deletePhoto)
}

// handleBoth registers path with and without a trailing slash.
func handleBoth(router gin.IRoutes, method, path string, handlers ...gin.HandlerFunc) {
	router.Handle(method, path, handlers...)
	router.Handle(method, path+"/", handlers...)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Retry-After, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
