package poll

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
	GetPollOptions(c *gin.Context)
	GetPoll(c *gin.Context)
	ListPolls(c *gin.Context)
	CreatePoll(c *gin.Context)
	UpdateStatus(c *gin.Context)
	GetResult(c *gin.Context)
	ListResults(c *gin.Context)
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

func (h *handler) GetPollOptions(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	pollName := c.Param("id")
	rows, err := h.service.GetPollOptions(ctx, pollName)
	if err != nil {
		h.handleError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"poll":    pollName,
		"options": len(rows),
	}).Debug("Poll options looked up")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    OptionsResponse{Poll: pollName, Options: rows},
	})
}

func (h *handler) GetPoll(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	poll, err := h.service.GetPoll(ctx, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    poll,
	})
}

func (h *handler) ListPolls(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	req := &ListPollsRequest{
		Page:   parseIntParam(c, "page", 1),
		Limit:  parseIntParam(c, "limit", defaultPageLimit),
		Status: c.Query("status"),
	}

	response, err := h.service.ListPolls(ctx, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"polls_returned": len(response.Polls),
		"total_count":    response.TotalCount,
		"page":           response.Page,
	}).Info("ListPolls completed successfully")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

func (h *handler) CreatePoll(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	principal, _ := models.PrincipalFromContext(c.Request.Context())
	owner := ""
	if principal != nil {
		owner = principal.Email
	}

	poll, err := h.service.CreatePoll(ctx, owner, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    poll,
		"message": "Poll created successfully",
	})
}

func (h *handler) UpdateStatus(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	if err := h.service.SetStatus(ctx, c.Param("id"), req.Status); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Poll status updated successfully",
	})
}

func (h *handler) GetResult(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	result, err := h.service.GetResult(ctx, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

func (h *handler) ListResults(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	results, err := h.service.ListResults(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}

func (h *handler) timeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrPollNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, "Poll not found", err.Error())
	case errors.Is(err, models.ErrInvalidPollTitle):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid title",
			"Title cannot contain special characters. Only letters, numbers, spaces, hyphens, and underscores are allowed.")
	case errors.Is(err, models.ErrPollHasNoOptions),
		errors.Is(err, models.ErrDuplicateOption),
		errors.Is(err, models.ErrInvalidPollStatus):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid poll", err.Error())
	case errors.Is(err, models.ErrDuplicateRecord):
		h.sendErrorResponse(c, http.StatusConflict, "Poll already exists", err.Error())
	default:
		logrus.WithError(err).Error("Poll request failed")
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
			"error": err,
		}).Warn("Invalid integer parameter, using default")

		return defaultValue
	}
	return parsed
}
