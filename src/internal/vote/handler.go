package vote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	NewForm(c *gin.Context)
	CreateVote(c *gin.Context)
	SubmitVote(c *gin.Context)
	UpdateVote(c *gin.Context)
	DeleteVote(c *gin.Context)
	CancelVote(c *gin.Context)
	AmendVote(c *gin.Context)
	GetVote(c *gin.Context)
	ListVotes(c *gin.Context)
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

func (h *handler) NewForm(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	form, err := h.service.NewForm(ctx, principal(c), c.Query("poll"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    form,
	})
}

func (h *handler) CreateVote(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	var req CreateVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	vote, err := h.service.CreateVote(ctx, principal(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    vote,
		"message": "Vote saved",
	})
}

func (h *handler) SubmitVote(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	vote, err := h.service.SubmitVote(ctx, principal(c), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vote,
		"message": "Vote submitted",
	})
}

func (h *handler) UpdateVote(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	var req UpdateVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	vote, err := h.service.UpdateVote(ctx, principal(c), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vote,
	})
}

func (h *handler) DeleteVote(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	if err := h.service.DeleteVote(ctx, principal(c), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vote deleted",
	})
}

func (h *handler) CancelVote(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	vote, err := h.service.CancelVote(ctx, principal(c), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vote,
		"message": "Vote cancelled",
	})
}

func (h *handler) AmendVote(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	var req AmendVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	vote, err := h.service.AmendVote(ctx, principal(c), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    vote,
		"message": "Vote amended",
	})
}

func (h *handler) GetVote(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	vote, err := h.service.GetVote(ctx, principal(c), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    vote,
	})
}

func (h *handler) ListVotes(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	req := &ListVotesRequest{
		Poll:  c.Query("poll"),
		Page:  parseIntParam(c, "page", 1),
		Limit: parseIntParam(c, "limit", defaultPageLimit),
	}

	response, err := h.service.ListVotes(ctx, principal(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

func principal(c *gin.Context) *models.Principal {
	p, _ := models.PrincipalFromContext(c.Request.Context())
	return p
}

func (h *handler) timeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotAuthenticated):
		h.sendErrorResponse(c, http.StatusUnauthorized, "Not authenticated", err.Error())
	case errors.Is(err, models.ErrPermissionDenied):
		h.sendErrorResponse(c, http.StatusForbidden, "Permission denied", err.Error())
	case errors.Is(err, models.ErrVoteNotFound), errors.Is(err, models.ErrPollNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, models.ErrPollRequired),
		errors.Is(err, models.ErrVoterRequired),
		errors.Is(err, models.ErrOptionRequired),
		errors.Is(err, models.ErrOptionNotInPoll):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid vote", err.Error())
	case errors.Is(err, models.ErrAlreadyVoted),
		errors.Is(err, models.ErrVoteAlreadyHandled),
		errors.Is(err, models.ErrVoteNotDraft),
		errors.Is(err, models.ErrVoteNotSubmitted),
		errors.Is(err, models.ErrVoteNotCancelled),
		errors.Is(err, models.ErrVoteAlreadyAmended),
		errors.Is(err, models.ErrDuplicateRecord):
		h.sendErrorResponse(c, http.StatusConflict, "Vote conflict", err.Error())
	case errors.Is(err, models.ErrPollNotActive), errors.Is(err, models.ErrPollExpired):
		h.sendErrorResponse(c, http.StatusUnprocessableEntity, "Poll closed", err.Error())
	default:
		logrus.WithError(err).Error("Vote request failed")
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
