package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnt/pollhub/internal/models"
)

func TestWebSocketStreamsChanges(t *testing.T) {
	server, _ := newTestServer(t)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	// Give the handler a moment to register its subscription.
	time.Sleep(100 * time.Millisecond)

	// A poll created after the subscription is announced on the socket.
	// Creation publishes a polls change and a profiles change.
	createPoll(t, server.Handler(), "0xcreator")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var change models.Change
	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, models.ChangePolls, change.Type)

	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, models.ChangeProfiles, change.Type)
}
