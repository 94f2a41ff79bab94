package account

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	Service
	loginErr error
}

func (s *stubService) Login(context.Context, *LoginRequest, ClientInfo) (*LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &LoginResponse{
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        &Profile{Email: "alice@example.com"},
	}, nil
}

func (s *stubService) Logout(context.Context, *models.Principal) error { return nil }

func newHandlerRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Configuration{
		App:      config.Application{Timeout: 5},
		Security: config.SecuritySettings{TokenCookie: "sid", UserCookie: "user_id"},
	}
	h := NewHandler(cfg, svc)

	router := gin.New()
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	return router
}

func cookiesByName(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestHandlerLoginSetsSessionCookies(t *testing.T) {
	router := newHandlerRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"alice@example.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := cookiesByName(w)
	require.Contains(t, cookies, "sid")
	require.Contains(t, cookies, "user_id")
	assert.Equal(t, "token", cookies["sid"].Value)
	assert.True(t, cookies["sid"].HttpOnly)
	userID, err := url.QueryUnescape(cookies["user_id"].Value)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", userID)
	assert.False(t, cookies["user_id"].HttpOnly)
}

func TestHandlerLoginErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		want int
	}{
		{"missing fields", nil, `{}`, http.StatusBadRequest},
		{"bad credentials", models.ErrInvalidCredentials, `{"email":"a","password":"b"}`, http.StatusUnauthorized},
		{"disabled", models.ErrUserDisabled, `{"email":"a","password":"b"}`, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newHandlerRouter(&stubService{loginErr: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandlerLogoutClearsCookies(t *testing.T) {
	router := newHandlerRouter(&stubService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookies := cookiesByName(w)
	require.Contains(t, cookies, "sid")
	assert.Equal(t, "", cookies["sid"].Value)
	assert.True(t, cookies["sid"].MaxAge < 0)
}
