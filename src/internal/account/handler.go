package account

import (
	"context"
	"errors"
	"net/http"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type handler struct {
	config  *config.Configuration
	service Service
}

func NewHandler(cfg *config.Configuration, service Service) Handler {
	return &handler{
		config:  cfg,
		service: service,
	}
}

func (h *handler) Login(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", "email and password are required")
		return
	}

	resp, err := h.service.Login(ctx, &req, ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	sec := h.config.Security
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sec.TokenCookie, resp.AccessToken, maxAge, "/", "", sec.SecureCookies, true)
	// Readable by the frontend: its presence is the client's cached logged-in flag.
	c.SetCookie(sec.UserCookie, resp.User.Email, maxAge, "/", "", sec.SecureCookies, false)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
		"message": "Logged in",
	})
}

func (h *handler) Logout(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	principal, _ := models.PrincipalFromContext(c.Request.Context())
	if err := h.service.Logout(ctx, principal); err != nil {
		h.handleError(c, err)
		return
	}

	h.clearCookies(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

func (h *handler) Me(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	principal, _ := models.PrincipalFromContext(c.Request.Context())
	profile, err := h.service.Me(ctx, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}

func (h *handler) clearCookies(c *gin.Context) {
	sec := h.config.Security
	c.SetCookie(sec.TokenCookie, "", -1, "/", "", sec.SecureCookies, true)
	c.SetCookie(sec.UserCookie, "", -1, "/", "", sec.SecureCookies, false)
}

func (h *handler) timeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		h.sendErrorResponse(c, http.StatusUnauthorized, "Invalid login credentials", err.Error())
	case errors.Is(err, models.ErrUserDisabled):
		h.sendErrorResponse(c, http.StatusForbidden, "User disabled", err.Error())
	case errors.Is(err, models.ErrNotAuthenticated), errors.Is(err, models.ErrUserNotFound):
		h.clearCookies(c)
		h.sendErrorResponse(c, http.StatusUnauthorized, "Not authenticated", err.Error())
	default:
		logrus.WithError(err).Error("Account request failed")
		h.sendErrorResponse(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, error, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   error,
		"message": message,
	})
}
