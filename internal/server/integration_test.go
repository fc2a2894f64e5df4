package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-tracking/internal/cache"
	"courier-tracking/internal/carriers"
	"courier-tracking/internal/database"
	"courier-tracking/internal/handlers"
)

type stubCarrier struct {
	calls int
}

func (s *stubCarrier) ID() string   { return "stub" }
func (s *stubCarrier) Name() string { return "Stub Carrier" }

func (s *stubCarrier) Track(ctx context.Context, trackingNumber string) (*carriers.TrackInfo, error) {
	s.calls++
	if trackingNumber == "0000000000" {
		return nil, carriers.NotFoundError("stub", "tracking result not found for "+trackingNumber)
	}

	pickup := time.Date(2026, 1, 16, 10, 57, 48, 0, time.UTC)
	delivery := time.Date(2026, 1, 17, 14, 5, 0, 0, time.UTC)
	sender := "홍길동"
	return &carriers.TrackInfo{
		Sender: &carriers.Party{Name: &sender},
		Events: []carriers.TrackEvent{
			{
				Status:      carriers.Status{Code: carriers.StatusAtPickup, Name: "집하완료"},
				Time:        &pickup,
				Location:    &carriers.Location{CountryCode: "KR", Name: "서울"},
				Description: "집하완료 - 서울",
			},
			{
				Status:      carriers.Status{Code: carriers.StatusDelivered, Name: "배송완료"},
				Time:        &delivery,
				Location:    &carriers.Location{CountryCode: "KR", Name: "부산진"},
				Description: "배송완료 - 부산진",
			},
		},
	}, nil
}

type testEnv struct {
	server *httptest.Server
	stub   *stubCarrier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stub := &stubCarrier{}
	registry := carriers.NewRegistry(&carriers.CarrierConfig{Logger: logger})
	registry.Register("stub", func(cfg *carriers.CarrierConfig) carriers.Carrier {
		return stub
	})

	cacheManager := cache.NewManager(false, time.Minute)
	t.Cleanup(cacheManager.Close)

	server := httptest.NewServer(New(registry, cacheManager, db, logger))
	t.Cleanup(server.Close)

	return &testEnv{server: server, stub: stub}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func (e *testEnv) post(t *testing.T, path string, payload any) (*http.Response, []byte) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status handlers.HealthStatus
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, "ok", status.Status)
}

func TestCarriersEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/carriers")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var infos []handlers.CarrierInfo
	require.NoError(t, json.Unmarshal(body, &infos))

	codes := make(map[string]string)
	for _, info := range infos {
		codes[info.Code] = info.Name
	}
	assert.Equal(t, "Stub Carrier", codes["stub"])
	assert.Equal(t, "경동택배", codes["kdexp"])
}

func TestTrackEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/carriers/stub/track/1234567890")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var track handlers.TrackResponse
	require.NoError(t, json.Unmarshal(body, &track))
	assert.Equal(t, "stub", track.Carrier)
	assert.False(t, track.FromCache)
	require.NotNil(t, track.TrackInfo)
	require.Len(t, track.TrackInfo.Events, 2)
	assert.Equal(t, carriers.StatusAtPickup, track.TrackInfo.Events[0].Status.Code)
	assert.Equal(t, carriers.StatusDelivered, track.TrackInfo.Events[1].Status.Code)

	// The lookup is recorded to the store
	resp, body = env.get(t, "/api/shipments")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var shipments []database.Shipment
	require.NoError(t, json.Unmarshal(body, &shipments))
	require.Len(t, shipments, 1)
	assert.Equal(t, "1234567890", shipments[0].TrackingNumber)
	assert.Equal(t, "delivered", shipments[0].Status)
	assert.True(t, shipments[0].IsDelivered)

	resp, body = env.get(t, "/api/shipments/1/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []database.TrackingEvent
	require.NoError(t, json.Unmarshal(body, &events))
	assert.Len(t, events, 2)

	// Second lookup is served from cache without touching the carrier
	resp, body = env.get(t, "/api/carriers/stub/track/1234567890")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &track))
	assert.True(t, track.FromCache)
	assert.Equal(t, 1, env.stub.calls)
}

func TestTrackEndpoint_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/carriers/stub/track/0000000000")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Contains(t, errResp.Error, "0000000000")
}

func TestTrackEndpoint_UnknownCarrier(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/api/carriers/nosuch/track/123")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestShipmentLifecycle(t *testing.T) {
	env := newTestEnv(t)

	create := handlers.CreateShipmentRequest{
		TrackingNumber: "5555555555",
		Carrier:        "stub",
		Description:    "책상",
	}
	resp, body := env.post(t, "/api/shipments", create)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var shipment database.Shipment
	require.NoError(t, json.Unmarshal(body, &shipment))
	assert.Equal(t, "stub", shipment.Carrier)
	assert.NotZero(t, shipment.ID)

	// Duplicate pair conflicts
	resp, _ = env.post(t, "/api/shipments", create)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown carrier rejected up front
	resp, _ = env.post(t, "/api/shipments", handlers.CreateShipmentRequest{
		TrackingNumber: "666", Carrier: "nosuch",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.get(t, "/api/shipments/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.get(t, "/api/shipments/abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, env.server.URL+"/api/shipments/1", nil)
	require.NoError(t, err)
	deleteResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	deleteResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, deleteResp.StatusCode)

	resp, _ = env.get(t, "/api/shipments/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
