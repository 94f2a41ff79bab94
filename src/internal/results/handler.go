package results

import (
	"errors"
	"net/http"
	"net/url"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader
}

func NewHandler(cfg *config.Configuration, broadcaster *Broadcaster) *Handler {
	allowed := ""
	if u, err := url.Parse(cfg.App.HostLink); err == nil {
		allowed = u.Host
	}

	return &Handler{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, allowed)
			},
		},
	}
}

// Live streams the results of one poll, starting with the current snapshot.
func (h *Handler) Live(c *gin.Context) {
	poll := c.Param("id")

	initial, err := h.broadcaster.snapshot(c.Request.Context(), poll)
	if err != nil {
		if errors.Is(err, models.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Poll not found",
			})
			return
		}
		logrus.WithError(err).WithField("poll", poll).Error("Failed to load live results")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load results",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewWebsocketClient(conn)
	if err := client.WriteMessage(websocket.TextMessage, initial); err != nil {
		client.Close()
		return
	}

	h.broadcaster.hub.Register(poll, client)
	defer h.broadcaster.hub.Unregister(poll, client)

	for {
		if _, _, err := client.ReadMessage(); err != nil {
			break
		}
	}
}

func checkOrigin(r *http.Request, allowedHost string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host) || (allowedHost != "" && strings.EqualFold(u.Host, allowedHost))
}
