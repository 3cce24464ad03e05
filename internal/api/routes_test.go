package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiard/internal/config"
	"github.com/playmatatu/billiard/internal/game"
	"github.com/playmatatu/billiard/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, maxRooms int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:        "test",
		FrontendURL:        "http://localhost:5173",
		MaxRooms:           maxRooms,
		TickRateHz:         120,
		MaxDeltaMillis:     50,
		SnapshotEveryTicks: 30,
		IdleRoomMinutes:    5,
		JWTSecret:          "api-test-secret",
		TokenTTLMinutes:    5,
		Physics:            config.DefaultPhysics(),
	}
	tm := game.NewTableManager(context.Background(), nil, nil, cfg)
	tm.SetBroadcaster(ws.TableHub)
	game.Manager = tm
	t.Cleanup(tm.Shutdown)

	r := gin.New()
	SetupRoutes(r, nil, nil, cfg)
	return r
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type createResponse struct {
	ID       string        `json:"id"`
	Token    string        `json:"token"`
	WSURL    string        `json:"ws_url"`
	Snapshot game.Snapshot `json:"snapshot"`
}

func createTable(t *testing.T, r *gin.Engine) createResponse {
	t.Helper()
	w := do(r, http.MethodPost, "/api/v1/tables", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp createResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, 4)

	w := do(r, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disabled", body["database"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestConfigEndpoint(t *testing.T) {
	r := setupRouter(t, 4)

	w := do(r, http.MethodGet, "/api/v1/config", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Physics config.Physics `json:"physics"`
		Table   game.Table     `json:"table"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0.03, body.Physics.BallRadius)
	assert.Len(t, body.Table.Pockets, 6)
}

func TestCreateAndGetTable(t *testing.T) {
	r := setupRouter(t, 4)
	created := createTable(t, r)

	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Token)
	assert.Contains(t, created.WSURL, created.ID)
	assert.Equal(t, game.PhasePlayable, created.Snapshot.Phase)
	assert.Len(t, created.Snapshot.Balls, 16)

	w := do(r, http.MethodGet, "/api/v1/tables/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"live":true`)

	w = do(r, http.MethodGet, "/api/v1/tables", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)
}

func TestGetUnknownTable(t *testing.T) {
	r := setupRouter(t, 4)

	w := do(r, http.MethodGet, "/api/v1/tables/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTableLimit(t *testing.T) {
	r := setupRouter(t, 1)
	createTable(t, r)

	w := do(r, http.MethodPost, "/api/v1/tables", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCloseTableRequiresToken(t *testing.T) {
	r := setupRouter(t, 4)
	a := createTable(t, r)
	b := createTable(t, r)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodDelete, "/api/v1/tables/"+a.ID, "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/v1/tables/"+a.ID, b.Token).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/v1/tables/"+a.ID, a.Token).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/tables/"+a.ID, "").Code)
}

func TestShotsEndpoints(t *testing.T) {
	r := setupRouter(t, 4)
	created := createTable(t, r)

	w := do(r, http.MethodGet, "/api/v1/tables/"+created.ID+"/shots", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Shots []json.RawMessage `json:"shots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Shots)

	w = do(r, http.MethodGet, "/api/v1/tables/"+created.ID+"/shots.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "id", rows[0][0])
	assert.Contains(t, rows[0], "velocity_x")

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/tables/"+created.ID+"/shots?limit=x", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/tables/missing/shots", "").Code)
}
