package middleware

// identity.go holds the context keys shared by the session and logging
// middleware, plus the helpers that read them back in handlers.

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
)

const (
    ctxUsername  = "username"
    ctxRequestID = "reqid"
)

// Username returns the authenticated username stored by Session, or "" when
// the request did not pass through it.
func Username(c echo.Context) string {
    if v, ok := c.Get(ctxUsername).(string); ok {
        return v
    }
    return ""
}

// TokenFromRequest extracts a session token from "Authorization: Bearer t",
// a bare "Authorization: t" header, or the token query parameter, in that
// order.  It returns "" when none is present.
func TokenFromRequest(r *http.Request) string {
    if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
        if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
            return strings.TrimSpace(auth[7:])
        }
        return auth
    }
    return strings.TrimSpace(r.URL.Query().Get("token"))
}
