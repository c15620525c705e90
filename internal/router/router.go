// Package router wires handlers and middleware onto the Echo
// instance.  Route groups mirror the deployment surface: /auth for
// the membership flows behind the rate limiter, the public content
// catalog behind the response cache, and /admin behind the role
// check.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/gots/membership/internal/config"
    "github.com/gots/membership/internal/handler"
    "github.com/gots/membership/internal/middleware"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
    Auth     *handler.AuthHandler
    Content  *handler.ContentHandler
    Progress *handler.ProgressHandler
    OptIn    *handler.OptInHandler
    Health   *handler.HealthHandler
}

// Register mounts all routes.  members resolves sessions; rdb may be
// nil, in which case caching and rate limiting silently disable
// themselves.
func Register(e *echo.Echo, h Handlers, cfg config.Config, members middleware.MemberResolver, rdb *redis.Client) {
    resolve := middleware.ResolveMember(cfg.JWTSecret, members)
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    e.GET("/healthz", h.Health.Health)

    // Membership flows.  The limiter fronts everything under /auth;
    // only /auth/me needs a resolved session.
    auth := e.Group("/auth", limiter)
    auth.POST("/register", h.Auth.Register)
    auth.POST("/login", h.Auth.Login)
    auth.POST("/logout", h.Auth.Logout)
    auth.POST("/refresh", h.Auth.Refresh)
    auth.POST("/forgot-password", h.Auth.ForgotPassword)
    auth.POST("/reset-password", h.Auth.ResetPassword)
    auth.GET("/reset-password/validate", h.Auth.ValidateResetToken)
    auth.GET("/me", h.Auth.Me, resolve, middleware.RequireMember())

    // Public story catalog.  Anonymous reads are cached whole;
    // authenticated requests bypass the cache inside the middleware.
    pub := e.Group("", cache)
    pub.GET("/characters", h.Content.ListCharacters)
    pub.GET("/characters/:id", h.Content.GetCharacter)
    pub.GET("/locations", h.Content.ListLocations)
    pub.GET("/locations/:id", h.Content.GetLocation)
    pub.GET("/scenes", h.Content.GetScenes)

    e.POST("/opt-in", h.OptIn.OptIn)

    e.PUT("/progress", h.Progress.Update, resolve, middleware.RequireMember())

    admin := e.Group("/admin", resolve, middleware.RequireMember(), middleware.RequireRole("admin"))
    admin.POST("/scenes/:id/publish", h.Content.PublishScene)
}
