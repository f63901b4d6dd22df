package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sentiment-analyzer/internal/handler"
	"github.com/iliyamo/sentiment-analyzer/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication:
// liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, ready map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ready))
}

// RegisterAuth registers the session endpoints under /v1/auth.  login is
// the rate limiter guarding password checks; it is applied to login only.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, login echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	// GET is kept for clients that pass credentials as query parameters.
	g.POST("/login", a.Login, login)
	g.GET("/login", a.Login, login)
	g.POST("/logout", a.Logout)
}

// RegisterProtected registers the endpoints that require a valid session
// token.  Every request passes through the Session middleware, which
// answers 401 {"error":"session expired"} on its own.
func RegisterProtected(e *echo.Echo, auth middleware.Authenticator, a *handler.AuthHandler, m *handler.ModelHandler, act *handler.ActivityHandler) {
	g := e.Group("/v1", middleware.Session(auth))
	g.GET("/me", a.Me)
	g.POST("/train", m.Train)
	g.GET("/infer", m.Infer)
	g.GET("/activity", act.Get)
}
