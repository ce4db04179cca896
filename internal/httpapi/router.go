package httpapi

import (
	"context"
	"errors"
	"net/http"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/MrEthical07/goTenant/middleware"
	"github.com/MrEthical07/goTenant/organization"
	"github.com/MrEthical07/goTenant/permission"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Auth is the part of *goTenant.Engine the handlers use.
type Auth interface {
	middleware.Authenticator
	middleware.Authorizer
	Signup(ctx context.Context, req goTenant.SignupRequest) (*goTenant.Identity, error)
	Signin(ctx context.Context, email, password string) (*goTenant.TokenPair, error)
	RefreshAccess(ctx context.Context, refreshToken string) (*goTenant.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
	Ping(ctx context.Context) error
	Roles() *permission.Registry
}

// Options tunes router construction.
type Options struct {
	// ServiceName enables otelgin tracing when set.
	ServiceName string
	// GuardRefreshRoutes puts the access guard in front of refresh and revoke.
	GuardRefreshRoutes bool
	// Metrics is mounted at GET /metrics when non-nil.
	Metrics http.Handler
}

// NewRouter wires every route. It fails when the role registry lacks a role
// named by the route policy.
func NewRouter(opts Options, auth Auth, orgs *organization.Service, logger *zap.Logger) (*gin.Engine, error) {
	if auth == nil || orgs == nil {
		return nil, errors.New("httpapi: auth and organization service are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	policy, err := newRoutePolicy(auth.Roles())
	if err != nil {
		return nil, err
	}
	logger.Info("route policy",
		zap.Strings("manage", policy.manage.Names()),
		zap.Strings("read", policy.read.Names()),
	)

	r := gin.New()
	r.Use(gin.Recovery())
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(middleware.RequestLogger(logger))

	authHandler := &AuthHandler{auth: auth, logger: logger.Named("auth")}
	orgHandler := &OrganizationHandler{orgs: orgs, logger: logger.Named("organization")}
	guard := middleware.Guard(auth)

	r.GET("/healthz", healthz(auth))
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/signin", authHandler.Signin)

		sessionRoutes := authGroup.Group("")
		if opts.GuardRefreshRoutes {
			sessionRoutes.Use(guard)
		}
		sessionRoutes.POST("/refresh-token", authHandler.Refresh)
		sessionRoutes.POST("/revoke-refresh-token", authHandler.Revoke)

		authGroup.GET("/me", guard, authHandler.Me)
	}

	orgGroup := api.Group("/organization", guard)
	{
		orgGroup.POST("", middleware.AllowedTo(auth, policy.manage), orgHandler.Create)
		orgGroup.GET("", middleware.AllowedTo(auth, policy.read), orgHandler.List)
		orgGroup.GET("/:organization_id", middleware.AllowedTo(auth, policy.read), orgHandler.Get)
		orgGroup.PUT("/:organization_id", middleware.AllowedTo(auth, policy.manage), orgHandler.Update)
		orgGroup.DELETE("/:organization_id", middleware.AllowedTo(auth, policy.manage), orgHandler.Delete)
		orgGroup.POST("/:organization_id/invite", middleware.AllowedTo(auth, policy.manage), orgHandler.Invite)
	}

	r.NoRoute(func(c *gin.Context) {
		respond(c, http.StatusNotFound, "route not found")
	})

	return r, nil
}

func healthz(auth Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Ping(c.Request.Context()); err != nil {
			respond(c, http.StatusServiceUnavailable, "unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
