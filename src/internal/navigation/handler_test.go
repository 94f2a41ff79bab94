package navigation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type tokenAuthenticator map[string]*models.Principal

func (a tokenAuthenticator) Authenticate(_ context.Context, token string) (*models.Principal, error) {
	p, ok := a[token]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return p, nil
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Configuration{
		App:      config.Application{Name: "polling-svc"},
		Security: config.SecuritySettings{TokenCookie: "sid", UserCookie: "user_id"},
		Frontend: config.FrontendConfig{BasePath: "/frontend"},
	}
	h := NewHandler(cfg, NewGuard(NewUserResource(tokenAuthenticator{"good": alice})))

	engine := gin.New()
	h.Register(engine.Group(cfg.Frontend.BasePath))
	engine.NoRoute(h.NoRoute)
	return engine
}

func request(engine *gin.Engine, path string, cookies map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

var loggedIn = map[string]string{"sid": "good", "user_id": "alice@example.com"}

func TestAuthenticatedUserOpensPollResults(t *testing.T) {
	w := request(newTestEngine(), "/frontend/polls/42/results", loggedIn)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-view="PollResults"`)
	assert.Contains(t, w.Body.String(), `"id":"42"`)
	assert.Contains(t, w.Body.String(), `"user":"alice@example.com"`)
}

func TestUnauthenticatedUserIsSentToLogin(t *testing.T) {
	w := request(newTestEngine(), "/frontend/polls", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/frontend/account/login", w.Header().Get("Location"))
}

func TestExpiredSessionWithCachedFlagIsSentToLogin(t *testing.T) {
	w := request(newTestEngine(), "/frontend/polls", map[string]string{"sid": "stale", "user_id": "alice@example.com"})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/frontend/account/login", w.Header().Get("Location"))
}

func TestAuthenticatedUserOnLoginGoesHome(t *testing.T) {
	w := request(newTestEngine(), "/frontend/account/login", loggedIn)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/frontend/", w.Header().Get("Location"))
}

func TestLoginPageServedToGuests(t *testing.T) {
	w := request(newTestEngine(), "/frontend/account/login", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-view="Login"`)
}

func TestHomeRedirectsToPollsList(t *testing.T) {
	w := request(newTestEngine(), "/frontend/", loggedIn)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/frontend/polls", w.Header().Get("Location"))
}

func TestUnknownFrontendPathIsGuarded(t *testing.T) {
	engine := newTestEngine()

	w := request(engine, "/frontend/settings", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/frontend/account/login", w.Header().Get("Location"))

	w = request(engine, "/frontend/settings", loggedIn)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(engine, "/elsewhere", loggedIn)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
