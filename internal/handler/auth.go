package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/sentiment-analyzer/internal/logs"
	"github.com/iliyamo/sentiment-analyzer/internal/middleware"
	"github.com/iliyamo/sentiment-analyzer/internal/model"
	"github.com/iliyamo/sentiment-analyzer/internal/service"
)

// Credentials is the slice of service.CredentialService used here.
type Credentials interface {
	Register(ctx context.Context, username, password string) error
	Validate(ctx context.Context, username, password string) (bool, error)
}

// Sessions is the slice of service.TokenService used here.
type Sessions interface {
	Issue(ctx context.Context, username string) (model.Token, error)
	Revoke(ctx context.Context, token string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Creds    Credentials
	Sessions Sessions
	Activity service.ActivityRecorder
}

func NewAuthHandler(creds Credentials, sessions Sessions, activity service.ActivityRecorder) *AuthHandler {
	return &AuthHandler{Creds: creds, Sessions: sessions, Activity: activity}
}

// ----- DTOs -----

type credentialsReq struct {
	Username string `json:"username" query:"username" form:"username"`
	Password string `json:"password" query:"password" form:"password"`
}

type loginResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register: create a credential.  No session is issued.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Creds.Register(ctx, req.Username, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"username": strings.TrimSpace(req.Username)})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	case errors.Is(err, service.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	default:
		return internalError(c, "register failed", err)
	}
}

// Login: validate the password, issue a session token and record the login.
// Accepts a JSON body on POST and query parameters on GET.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Creds.Validate(ctx, req.Username, req.Password)
	if err != nil {
		return internalError(c, "login failed", err)
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := h.Sessions.Issue(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return internalError(c, "issue token failed", err)
	}
	// The token is already valid; a lost activity write must not strand it.
	if err := h.Activity.Record(ctx, tok.Username, model.ActivityLogin); err != nil {
		logs.Logger.WithError(err).WithField("reqid", middleware.RequestIDFrom(c)).Warn("login activity not recorded")
	}

	logs.Logger.WithFields(logrus.Fields{
		"user":  tok.Username,
		"token": logs.TokenHint(tok.Token),
	}).Info("session issued")
	return c.JSON(http.StatusOK, loginResp{Token: tok.Token, ExpiresAt: tok.ExpiresAt})
}

// Logout: revoke the presented token.  Always 204 unless storage fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.TokenFromRequest(c.Request())

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, token); err != nil {
		return internalError(c, "logout failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"username": middleware.Username(c)})
}
