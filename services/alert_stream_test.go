package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"surveillance-center/backend/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertStreamBroadcast(t *testing.T) {
	stream := NewAlertStreamService()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		stream.Register(7, conn)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		return stream.ClientCount(7) == 1
	}, time.Second, 10*time.Millisecond)

	stream.Broadcast(7, &models.Alert{ID: 1, CameraID: 2, AlertType: "person", Confidence: 0.8})

	var got models.Alert
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, "person", got.AlertType)

	// An alert for another user must not reach this client.
	stream.Broadcast(8, &models.Alert{ID: 2, CameraID: 9, AlertType: "intrusion"})
	client.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var unexpected models.Alert
	assert.Error(t, client.ReadJSON(&unexpected))
}

func TestAlertStreamUnregister(t *testing.T) {
	stream := NewAlertStreamService()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		stream.Register(7, conn)
		stream.Unregister(7, conn)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		return stream.ClientCount(7) == 0
	}, time.Second, 10*time.Millisecond)
}
