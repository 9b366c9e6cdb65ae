package integration_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"artfolio_backend/test/helpers"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsMessage struct {
	Type string   `json:"type"`
	Data snapshot `json:"data"`
}

func dialWS(t *testing.T, ts *TestServer, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws?token=" + token
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWS_RequiresToken(t *testing.T) {
	ts := NewTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestWS_SnapshotAndLogout(t *testing.T) {
	ts := NewTestServer(t)
	auth := register(t, ts, "alice")

	conn := dialWS(t, ts, auth.AccessToken)

	first := readWS(t, conn)
	assert.Equal(t, "snapshot", first.Type)
	assert.Empty(t, first.Data.Portfolio)

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "snapshot"}))
	assert.Equal(t, "snapshot", readWS(t, conn).Type)

	// Изменение состояния через REST приходит во вкладку
	res, body := ts.SendFile(t, "/api/v1/session/uploads", auth.AccessToken, "sketch.png", "image/png", helpers.PNGBytes(t, 8, 8))
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	pushed := readWS(t, conn)
	for len(pushed.Data.Uploads) == 0 {
		pushed = readWS(t, conn)
	}
	assert.Equal(t, "snapshot", pushed.Type)
	require.Len(t, pushed.Data.Uploads, 1)
	assert.Equal(t, "sketch", pushed.Data.Uploads[0].Title)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// Выход закрывает все вкладки сессии
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			assert.NotContains(t, err.Error(), "timeout", "connection is closed by the server")
			break
		}
	}
}
