package middleware

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sentiment-analyzer/internal/logs"
    "github.com/iliyamo/sentiment-analyzer/internal/service"
)

// Authenticator resolves a session token to its owner.  It returns
// service.ErrSessionExpired for unknown, expired and revoked tokens alike.
type Authenticator interface {
    Authenticate(ctx context.Context, token string) (string, error)
}

// Session rejects requests without a valid session token with 401
// {"error":"session expired"} and stores the owner's username in the
// context for downstream handlers.
func Session(auth Authenticator) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            token := TokenFromRequest(c.Request())
            username, err := auth.Authenticate(c.Request().Context(), token)
            if err != nil {
                if errors.Is(err, service.ErrSessionExpired) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
                }
                logs.Logger.WithError(err).WithField("reqid", RequestIDFrom(c)).Error("session lookup failed")
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
            }
            c.Set(ctxUsername, username)
            return next(c)
        }
    }
}
