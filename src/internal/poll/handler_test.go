package poll

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"polling-svc/src/internal/config"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&config.Configuration{App: config.Application{Timeout: 5}}, svc)

	router := gin.New()
	router.GET("/polls/:id/options", h.GetPollOptions)
	router.GET("/polls/:id/results", h.GetResult)
	router.POST("/polls", h.CreatePoll)
	return router
}

func TestHandlerGetPollOptions(t *testing.T) {
	router := newTestRouter(NewPollService(newFakeRepository(fruitPoll()), newFakeCache()))

	tests := []struct {
		name string
		id   string
		want []OptionRow
	}{
		{"known poll", "POLL-1", []OptionRow{{OptionText: "Banana"}, {OptionText: "Apple"}}},
		{"unknown poll", "POLL-404", []OptionRow{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/polls/"+tt.id+"/options", nil))
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Success bool            `json:"success"`
				Data    OptionsResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.True(t, body.Success)
			assert.Equal(t, tt.id, body.Data.Poll)
			assert.Equal(t, tt.want, body.Data.Options)
		})
	}
}

func TestHandlerGetResultNotFound(t *testing.T) {
	router := newTestRouter(NewPollService(newFakeRepository(), newFakeCache()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/polls/POLL-404/results", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerCreatePollRejectsBadTitle(t *testing.T) {
	router := newTestRouter(NewPollService(newFakeRepository(), newFakeCache()))

	payload, _ := json.Marshal(CreatePollRequest{Title: "Fruit!!", Options: []string{"Apple"}})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/polls", bytes.NewReader(payload)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
