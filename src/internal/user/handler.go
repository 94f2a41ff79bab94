package user

import (
	"context"
	"errors"
	"net/http"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	ListUsers(c *gin.Context)
	GetStats(c *gin.Context)
	EnableUser(c *gin.Context)
	DisableUser(c *gin.Context)
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

func (h *handler) ListUsers(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	req := &ListUsersRequest{
		Page:     parseIntParam(c, "page", 1),
		Limit:    parseIntParam(c, "limit", defaultPageLimit),
		UserType: c.Query("userType"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	}

	response, err := h.service.ListUsers(ctx, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
		"message": "Users retrieved successfully",
	})
}

func (h *handler) GetStats(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	stats, err := h.service.GetStats(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
		"message": "User statistics retrieved successfully",
	})
}

func (h *handler) EnableUser(c *gin.Context) {
	h.updateStatus(c, true, "User enabled successfully")
}

func (h *handler) DisableUser(c *gin.Context) {
	h.updateStatus(c, false, "User disabled successfully")
}

func (h *handler) updateStatus(c *gin.Context, enabled bool, successMessage string) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	principal, ok := models.PrincipalFromContext(c.Request.Context())
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Not authenticated", "Please log in")
		return
	}

	userID := c.Param("id")

	var err error
	if enabled {
		err = h.service.EnableUser(ctx, principal, userID)
	} else {
		err = h.service.DisableUser(ctx, principal, userID)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": successMessage,
	})
}

func (h *handler) timeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, "User not found", "No user found with the provided ID")
	case errors.Is(err, models.ErrInvalidParams):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		logrus.WithError(err).Error("User administration request failed")
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

func parseIntParam(c *gin.Context, param string, defaultValue int) int {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"param": param,
			"value": value,
		}).Warn("Invalid integer parameter, using default")
		return defaultValue
	}
	return parsed
}
