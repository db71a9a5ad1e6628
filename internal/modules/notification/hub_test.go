package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assignportal/internal/domain"
	"assignportal/internal/pkg/jwt"
	"assignportal/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type knownUsers struct{}

// every id below 100 exists
func (knownUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if id <= 0 || id >= 100 {
		return nil, repository.ErrNotFound
	}
	return &domain.User{ID: id, Username: "user", Role: domain.RoleTeacher}, nil
}

func startServer(t *testing.T) (*Hub, *jwt.Service, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	jwtService := jwt.New("ws-secret", time.Hour)
	r := gin.New()
	NewHandler(hub, jwtService, knownUsers{}, nil).RegisterRoutes(r.Group("/api/v1"))

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, jwtService, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/notifications"
}

func waitOnline(t *testing.T, hub *Hub, userID int64) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.IsOnline(userID) }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DeliversToConnectedUser(t *testing.T) {
	hub, jwtService, url := startServer(t)
	token, err := jwtService.GenerateToken(5, "teacher", "teacher")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitOnline(t, hub, 5)

	assert.True(t, hub.SendToUser(5, map[string]any{"type": "submission.received", "submission_id": 1}))
	assert.False(t, hub.SendToUser(6, map[string]any{"type": "submission.received"}))

	var got map[string]any
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "submission.received", got["type"])
}

func TestHub_RejectsMissingToken(t *testing.T) {
	_, _, url := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_NewConnectionReplacesOld(t *testing.T) {
	hub, jwtService, url := startServer(t)
	token, err := jwtService.GenerateToken(9, "teacher", "teacher")
	require.NoError(t, err)

	first, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	defer first.Close()
	waitOnline(t, hub, 9)

	second, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	defer second.Close()

	// the hub closes the replaced connection while registering the new one
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = first.ReadMessage()
	require.Error(t, err)

	assert.True(t, hub.SendToUser(9, map[string]any{"type": "hello"}))

	var got map[string]any
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, second.ReadJSON(&got))
	assert.Equal(t, "hello", got["type"])
	assert.Equal(t, 1, hub.OnlineCount())
}

func TestHub_RejectsTokenOfDeletedUser(t *testing.T) {
	_, jwtService, url := startServer(t)
	token, err := jwtService.GenerateToken(500, "gone", "teacher")
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_SlowReaderDoesNotBlockSender(t *testing.T) {
	prev := writeWait
	writeWait = 200 * time.Millisecond
	t.Cleanup(func() { writeWait = prev })

	hub, jwtService, url := startServer(t)
	token, err := jwtService.GenerateToken(11, "teacher", "teacher")
	require.NoError(t, err)

	// the client never reads, so the server's socket buffers fill up
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitOnline(t, hub, 11)

	payload := map[string]any{"type": "submission.received", "pad": strings.Repeat("x", 64<<10)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if !hub.SendToUser(11, payload) {
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("SendToUser blocked on a client that never reads")
	}
	assert.False(t, hub.IsOnline(11))
}
