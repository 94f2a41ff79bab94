package vote

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc Service, p *models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&config.Configuration{App: config.Application{Timeout: 5}}, svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if p != nil {
			c.Request = c.Request.WithContext(models.WithPrincipal(c.Request.Context(), p))
		}
		c.Next()
	})
	router.GET("/votes/new", h.NewForm)
	router.POST("/votes", h.CreateVote)
	router.GET("/votes/:id", h.GetVote)
	router.POST("/votes/:id/submit", h.SubmitVote)
	router.POST("/votes/:id/cancel", h.CancelVote)
	router.POST("/votes/:id/amend", h.AmendVote)
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerNewForm(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f.svc, alice)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/votes/new?poll=fruit", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    Form `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice@example.com", body.Data.Voter)
	assert.Len(t, body.Data.Options, 2)
}

func TestHandlerNewFormUnauthenticated(t *testing.T) {
	router := newTestRouter(newFixture().svc, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/votes/new?poll=fruit", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		body CreateVoteRequest
		want int
	}{
		{"created", CreateVoteRequest{Poll: "fruit", Option: "Apple"}, http.StatusCreated},
		{"option not in poll", CreateVoteRequest{Poll: "fruit", Option: "Yes"}, http.StatusBadRequest},
		{"unknown poll", CreateVoteRequest{Poll: "missing", Option: "Yes"}, http.StatusNotFound},
		{"inactive poll", CreateVoteRequest{Poll: "closed", Option: "Yes", Submit: true}, http.StatusUnprocessableEntity},
		{"expired poll", CreateVoteRequest{Poll: "expired", Option: "Yes", Submit: true}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(newFixture().svc, alice)
			w := postJSON(router, "/votes", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestHandlerSubmitConflictsAndOwnership(t *testing.T) {
	f := newFixture()

	first := postJSON(newTestRouter(f.svc, alice), "/votes", CreateVoteRequest{Poll: "fruit", Option: "Apple", Submit: true})
	require.Equal(t, http.StatusCreated, first.Code)

	var created struct {
		Data Vote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &created))

	w := postJSON(newTestRouter(f.svc, alice), "/votes/"+created.Data.Name+"/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	newTestRouter(f.svc, bob).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/votes/"+created.Data.Name, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	newTestRouter(f.svc, alice).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/votes/VOTE-404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerCreateVoteIgnoresVoterOverride(t *testing.T) {
	f := newFixture()

	w := postJSON(newTestRouter(f.svc, manager), "/votes", map[string]any{
		"poll":   "fruit",
		"option": "Apple",
		"voter":  "bob@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data Vote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "admin@example.com", created.Data.Voter)
	assert.Equal(t, "admin@example.com", f.repo.votes[created.Data.Name].Voter)
}

func TestHandlerCancelAndAmend(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f.svc, alice)

	first := postJSON(router, "/votes", CreateVoteRequest{Poll: "fruit", Option: "Banana", Submit: true})
	require.Equal(t, http.StatusCreated, first.Code)
	var created struct {
		Data Vote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &created))
	name := created.Data.Name

	w := postJSON(router, "/votes/"+name+"/amend", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(newTestRouter(f.svc, bob), "/votes/"+name+"/cancel", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(router, "/votes/"+name+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = postJSON(router, "/votes/"+name+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/votes/"+name+"/amend", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var amended struct {
		Data Vote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &amended))
	assert.Equal(t, name, amended.Data.AmendedFrom)
	assert.Equal(t, "Banana", amended.Data.Option)

	w = postJSON(router, "/votes/"+name+"/amend", AmendVoteRequest{Option: "Apple"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
