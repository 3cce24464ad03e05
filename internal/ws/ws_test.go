package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/billiard/internal/config"
	"github.com/playmatatu/billiard/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func setupServer(t *testing.T) (*httptest.Server, *game.CreatedTable) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		MaxRooms:           4,
		TickRateHz:         200,
		MaxDeltaMillis:     50,
		SnapshotEveryTicks: 30,
		IdleRoomMinutes:    5,
		JWTSecret:          "ws-test-secret",
		TokenTTLMinutes:    5,
		Physics:            config.DefaultPhysics(),
	}
	tm := game.NewTableManager(context.Background(), nil, nil, cfg)
	tm.SetBroadcaster(TableHub)
	game.Manager = tm
	t.Cleanup(tm.Shutdown)

	r := gin.New()
	r.GET("/tables/:id/ws", HandleTableWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	created, err := tm.CreateTable()
	require.NoError(t, err)
	return srv, created
}

func dial(srv *httptest.Server, tableID, token string) (*websocket.Conn, *http.Response, error) {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/tables/" + tableID + "/ws?token=" + url.QueryEscape(token)
	return websocket.DefaultDialer.Dial(u, nil)
}

// readUntil reads messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) inbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg inbound
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", typ)
		if msg.Type == typ {
			return msg
		}
	}
}

func sendPointer(t *testing.T, conn *websocket.Conn, p PointerData) {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(WSMessage{Type: "pointer", Data: data}))
}

func TestRejectsBadToken(t *testing.T) {
	srv, created := setupServer(t)

	_, resp, err := dial(srv, created.Room.ID, "bogus")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRejectsUnknownTable(t *testing.T) {
	srv, created := setupServer(t)

	_, resp, err := dial(srv, "no-such-table", created.Token)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInitialStateAndShot(t *testing.T) {
	srv, created := setupServer(t)

	conn, _, err := dial(srv, created.Room.ID, created.Token)
	require.NoError(t, err)
	defer conn.Close()

	state := readUntil(t, conn, game.MsgState)
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(state.Data, &snap))
	assert.Equal(t, game.PhasePlayable, snap.Phase)
	assert.Len(t, snap.Balls, 16)

	sendPointer(t, conn, PointerData{X: -0.6, Y: 0, Down: true, Pressed: true})
	time.Sleep(30 * time.Millisecond)
	sendPointer(t, conn, PointerData{X: -0.8, Y: 0, Released: true})

	shot := readUntil(t, conn, game.MsgShot)
	var data struct {
		ShotNumber int     `json:"shot_number"`
		VelocityX  float64 `json:"velocity_x"`
	}
	require.NoError(t, json.Unmarshal(shot.Data, &data))
	assert.Equal(t, 1, data.ShotNumber)
	assert.Greater(t, data.VelocityX, 0.0)

	readUntil(t, conn, game.MsgPhase)
}

func TestUnknownMessageType(t *testing.T) {
	srv, created := setupServer(t)

	conn, _, err := dial(srv, created.Room.ID, created.Token)
	require.NoError(t, err)
	defer conn.Close()
	readUntil(t, conn, game.MsgState)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "dance"}))
	readUntil(t, conn, game.MsgError)
}

func TestGetStateAndViewerCount(t *testing.T) {
	srv, created := setupServer(t)

	conn, _, err := dial(srv, created.Room.ID, created.Token)
	require.NoError(t, err)
	defer conn.Close()
	readUntil(t, conn, game.MsgState)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "get_state"}))
	readUntil(t, conn, game.MsgState)

	assert.Equal(t, 1, TableHub.TableClientCount(created.Room.ID))
	assert.Equal(t, 1, created.Room.Viewers())
}

func TestRelayedRackWon(t *testing.T) {
	srv, created := setupServer(t)

	conn, _, err := dial(srv, created.Room.ID, created.Token)
	require.NoError(t, err)
	defer conn.Close()
	readUntil(t, conn, game.MsgState)

	handleTableEvent([]byte(`{"type":"rack_won","table_id":"` + created.Room.ID + `","data":{"rack":1,"shots":7}}`))

	msg := readUntil(t, conn, game.MsgRackWon)
	assert.JSONEq(t, `{"rack":1,"shots":7}`, string(msg.Data))
}

func TestCloseTableDisconnectsViewers(t *testing.T) {
	srv, created := setupServer(t)

	conn, _, err := dial(srv, created.Room.ID, created.Token)
	require.NoError(t, err)
	defer conn.Close()
	readUntil(t, conn, game.MsgState)

	require.NoError(t, game.Manager.CloseTable(created.Room.ID, "test"))

	readUntil(t, conn, game.MsgTableClosed)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
