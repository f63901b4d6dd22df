package middleware

import (
    "fmt"
    "net/http"
    "runtime/debug"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/sentiment-analyzer/internal/logs"
)

// AccessLog writes one line per request.  The query string is left out of
// the uri field because it may carry a session token.
func AccessLog() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            req := c.Request()
            entry := logs.Logger.WithFields(logrus.Fields{
                "reqid":  RequestIDFrom(c),
                "method": req.Method,
                "uri":    req.URL.Path,
                "status": c.Response().Status,
                "bytes":  c.Response().Size,
                "dur":    time.Since(start).String(),
                "ip":     c.RealIP(),
            })
            if u := Username(c); u != "" {
                entry = entry.WithField("user", u)
            }
            if c.Response().Status >= http.StatusInternalServerError {
                entry.Warn("request")
            } else {
                entry.Info("request")
            }
            return nil
        }
    }
}

// Recoverer turns a handler panic into a 500 and logs the stack with the
// request id.  Register it inside AccessLog, or panicking requests get no
// access line.
func Recoverer() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) (err error) {
            defer func() {
                if rec := recover(); rec != nil {
                    reqid := RequestIDFrom(c)
                    logs.Logger.Errorf("panic: %v reqid=%s uri=%s method=%s\nstack:\n%s",
                        rec, reqid, c.Request().URL.Path, c.Request().Method, string(debug.Stack()))
                    err = c.JSON(http.StatusInternalServerError, echo.Map{
                        "error": "internal error",
                        "reqid": reqid,
                    })
                    if err != nil {
                        err = fmt.Errorf("write panic response: %w", err)
                    }
                }
            }()
            return next(c)
        }
    }
}
