package navigation

import (
	"html/template"
	"net/http"
	"polling-svc/src/internal/config"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/sirupsen/logrus"
)

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<base href="{{.BasePath}}/">
</head>
<body>
<div id="app" data-view="{{.Boot.View}}"></div>
<script id="boot" type="application/json">{{.Boot}}</script>
</body>
</html>
`))

// Boot is the state the client router starts from.
type Boot struct {
	View   string            `json:"view"`
	Params map[string]string `json:"params"`
	User   string            `json:"user,omitempty"`
}

type Handler struct {
	cfg   *config.Configuration
	guard *Guard
}

func NewHandler(cfg *config.Configuration, guard *Guard) *Handler {
	return &Handler{
		cfg:   cfg,
		guard: guard,
	}
}

// Register mounts every client route on the frontend group.
func (h *Handler) Register(group *gin.RouterGroup) {
	for _, route := range Routes {
		group.GET(route.Path, h.serve(route))
	}
}

// NoRoute serves unknown frontend paths to the client router, still guarded.
func (h *Handler) NoRoute(c *gin.Context) {
	base := h.basePath()
	path := c.Request.URL.Path
	if c.Request.Method != http.MethodGet || (path != base && !strings.HasPrefix(path, base+"/")) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Not found",
		})
		return
	}

	h.serve(Route{Name: ViewUnknown})(c)
}

func (h *Handler) serve(route Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := h.guard.Decide(c.Request.Context(), route.Name, h.state(c))
		if !decision.Allow {
			h.redirect(c, decision.RedirectTo)
			return
		}

		if route.RedirectTo != "" {
			h.redirect(c, route.RedirectTo)
			return
		}

		boot := Boot{View: route.Name, Params: map[string]string{}}
		if route.Props {
			for _, p := range c.Params {
				boot.Params[p.Key] = p.Value
			}
		}
		if decision.Principal != nil {
			boot.User = decision.Principal.Email
		}

		if h.cfg.Frontend.IndexFile != "" {
			c.Header("X-Frontend-View", boot.View)
			c.File(h.cfg.Frontend.IndexFile)
			return
		}

		c.Render(http.StatusOK, render.HTML{
			Template: shellTemplate,
			Name:     "shell",
			Data: gin.H{
				"Title":    h.cfg.App.Name,
				"BasePath": h.basePath(),
				"Boot":     boot,
			},
		})
	}
}

func (h *Handler) redirect(c *gin.Context, view string) {
	location := PathFor(h.basePath(), view, nil)
	logrus.WithFields(logrus.Fields{
		"from": c.Request.URL.Path,
		"to":   location,
	}).Debug("Navigation redirected")
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// state reads the client's cached login flag and its session token.
func (h *Handler) state(c *gin.Context) State {
	var state State
	if user, err := c.Cookie(h.cfg.Security.UserCookie); err == nil && user != "" && user != "Guest" {
		state.LoggedIn = true
	}
	if token, err := c.Cookie(h.cfg.Security.TokenCookie); err == nil {
		state.Token = token
	}
	return state
}

func (h *Handler) basePath() string {
	return strings.TrimRight(h.cfg.Frontend.BasePath, "/")
}
