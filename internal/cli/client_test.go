package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"courier-tracking/internal/carriers"
	"courier-tracking/internal/database"
	"courier-tracking/internal/handlers"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(handlers.HealthStatus{Status: "ok"})
	})
	mux.HandleFunc("GET /api/carriers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]handlers.CarrierInfo{{Code: "kdexp", Name: "경동택배"}})
	})
	mux.HandleFunc("GET /api/carriers/kdexp/track/123", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(handlers.TrackResponse{
			Carrier:        "kdexp",
			TrackingNumber: "123",
			TrackInfo: &carriers.TrackInfo{
				Events: []carriers.TrackEvent{
					{Status: carriers.Status{Code: carriers.StatusAtPickup, Name: "집하완료"}},
				},
			},
		})
	})
	mux.HandleFunc("GET /api/carriers/kdexp/track/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(handlers.ErrorResponse{Error: "tracking result not found for 404"})
	})
	mux.HandleFunc("POST /api/shipments", func(w http.ResponseWriter, r *http.Request) {
		var req handlers.CreateShipmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(database.Shipment{
			ID: 7, TrackingNumber: req.TrackingNumber, Carrier: req.Carrier,
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_HealthCheck(t *testing.T) {
	server := newAPIServer(t)
	client := NewClient(server.URL)
	if err := client.HealthCheck(); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClient_GetCarriers(t *testing.T) {
	server := newAPIServer(t)
	client := NewClient(server.URL)

	infos, err := client.GetCarriers()
	if err != nil {
		t.Fatalf("GetCarriers() error = %v", err)
	}
	if len(infos) != 1 || infos[0].Code != "kdexp" {
		t.Errorf("GetCarriers() = %+v, want kdexp", infos)
	}
}

func TestClient_Track(t *testing.T) {
	server := newAPIServer(t)
	client := NewClient(server.URL)

	track, err := client.Track("kdexp", "123")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if track.TrackingNumber != "123" || len(track.TrackInfo.Events) != 1 {
		t.Errorf("Track() = %+v, want one event for 123", track)
	}

	_, err = client.Track("kdexp", "404")
	if err == nil {
		t.Fatal("Track() error = nil, want API error")
	}
	if got := err.Error(); got != "tracking result not found for 404" {
		t.Errorf("Track() error = %q, want API error message passed through", got)
	}
}

func TestClient_CreateShipment(t *testing.T) {
	server := newAPIServer(t)
	client := NewClient(server.URL)

	shipment, err := client.CreateShipment(handlers.CreateShipmentRequest{
		TrackingNumber: "123", Carrier: "kdexp",
	})
	if err != nil {
		t.Fatalf("CreateShipment() error = %v", err)
	}
	if shipment.ID != 7 {
		t.Errorf("CreateShipment() ID = %d, want 7", shipment.ID)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name      string
		serverURL string
		format    string
		wantErr   bool
	}{
		{"valid", "http://localhost:8080", "table", false},
		{"json format", "http://localhost:8080", "json", false},
		{"bad URL", "not a url", "table", true},
		{"missing scheme", "localhost:8080", "table", true},
		{"bad format", "http://localhost:8080", "yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.serverURL, tt.format, false)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig(%q, %q) error = %v, wantErr %v", tt.serverURL, tt.format, err, tt.wantErr)
			}
		})
	}
}
