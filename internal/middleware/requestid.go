package middleware

import (
    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
)

const headerRequestID = "X-Request-Id"

// RequestID propagates the caller's X-Request-Id or assigns a new one.
func RequestID() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id := c.Request().Header.Get(headerRequestID)
            if id == "" {
                id = uuid.NewString()
            }
            c.Response().Header().Set(headerRequestID, id)
            c.Set(ctxRequestID, id)
            return next(c)
        }
    }
}

// RequestIDFrom returns the id assigned by RequestID, if any.
func RequestIDFrom(c echo.Context) string {
    if s, ok := c.Get(ctxRequestID).(string); ok {
        return s
    }
    return ""
}
