package results

import (
	"context"
	"net/http"
	"net/http/httptest"
	"polling-svc/src/internal/config"
	"polling-svc/src/internal/models"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLiveServer(t *testing.T, hub *Hub, source ResultSource) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(&config.Configuration{App: config.Application{HostLink: "http://polls.example.com"}}, NewBroadcaster(hub, source))
	router := gin.New()
	router.GET("/polls/:id/results/live", h.Live)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestLiveStreamsSnapshotAndUpdates(t *testing.T) {
	hub := NewHub()
	source := fakeSource{"fruit": {Name: "fruit", PollTitle: "Fruit", TotalVotes: 0}}
	srv := newLiveServer(t, hub, source)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/polls/fruit/results/live"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var initial models.PollResult
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, "Fruit", initial.PollTitle)

	require.Eventually(t, func() bool { return hub.Watchers("fruit") == 1 }, time.Second, 10*time.Millisecond)

	source["fruit"] = &models.PollResult{Name: "fruit", PollTitle: "Fruit", TotalVotes: 3}
	require.NoError(t, NewBroadcaster(hub, source).HandleVoteEvent(context.Background(), &models.VoteEvent{Poll: "fruit"}))

	var update models.PollResult
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, int64(3), update.TotalVotes)
}

func TestLiveUnknownPoll(t *testing.T) {
	srv := newLiveServer(t, NewHub(), fakeSource{})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/polls/missing/results/live"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:8080", true},
		{"http://polls.example.com", true},
		{"http://evil.example.com", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://localhost:8080/polls/x/results/live", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, checkOrigin(r, "polls.example.com"), tt.origin)
	}
}
