package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"courier-tracking/internal/cache"
	"courier-tracking/internal/carriers"
	"courier-tracking/internal/database"
)

// TrackHandler serves live carrier lookups
type TrackHandler struct {
	registry *carriers.Registry
	cache    *cache.Manager
	db       *database.DB
	logger   *slog.Logger
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(registry *carriers.Registry, cacheManager *cache.Manager, db *database.DB, logger *slog.Logger) *TrackHandler {
	return &TrackHandler{
		registry: registry,
		cache:    cacheManager,
		db:       db,
		logger:   logger,
	}
}

// TrackResponse is the payload for a successful live lookup
type TrackResponse struct {
	Carrier        string              `json:"carrier"`
	TrackingNumber string              `json:"tracking_number"`
	FromCache      bool                `json:"from_cache"`
	TrackInfo      *carriers.TrackInfo `json:"track_info"`
}

// TrackShipment handles GET /api/carriers/{carrier}/track/{trackingNumber}
func (h *TrackHandler) TrackShipment(w http.ResponseWriter, r *http.Request) {
	carrierCode := chi.URLParam(r, "carrier")
	trackingNumber := chi.URLParam(r, "trackingNumber")

	if info := h.cache.Get(carrierCode, trackingNumber); info != nil {
		writeJSON(w, http.StatusOK, &TrackResponse{
			Carrier:        carrierCode,
			TrackingNumber: trackingNumber,
			FromCache:      true,
			TrackInfo:      info,
		})
		return
	}

	carrier, err := h.registry.Create(carrierCode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := carrier.Track(r.Context(), trackingNumber)
	if err != nil {
		if carriers.IsNotFound(err) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("carrier lookup failed",
			"carrier", carrierCode, "tracking_number", trackingNumber, "error", err)
		writeError(w, http.StatusBadGateway, "carrier lookup failed: "+err.Error())
		return
	}

	h.cache.Set(carrierCode, trackingNumber, info)

	// Persistence is best effort: a storage hiccup should not fail a
	// lookup that already succeeded upstream.
	if err := h.record(carrier.ID(), trackingNumber, info); err != nil {
		h.logger.Warn("failed to record track result",
			"carrier", carrierCode, "tracking_number", trackingNumber, "error", err)
	}

	writeJSON(w, http.StatusOK, &TrackResponse{
		Carrier:        carrier.ID(),
		TrackingNumber: trackingNumber,
		TrackInfo:      info,
	})
}

// record persists the shipment and its events to the store
func (h *TrackHandler) record(carrierID, trackingNumber string, info *carriers.TrackInfo) error {
	shipment, err := h.db.Shipments.GetOrCreate(carrierID, trackingNumber)
	if err != nil {
		return err
	}

	events := make([]database.TrackingEvent, 0, len(info.Events))
	for _, e := range info.Events {
		event := database.TrackingEvent{
			EventTime:   e.Time,
			Status:      string(e.Status.Code),
			Description: e.Description,
		}
		if e.Location != nil {
			event.Location = e.Location.Name
		}
		events = append(events, event)
	}
	if err := h.db.TrackingEvents.AddEvents(shipment.ID, events); err != nil {
		return err
	}

	latest := info.LatestStatus()
	return h.db.Shipments.UpdateStatus(shipment.ID, string(latest), latest == carriers.StatusDelivered)
}

// ErrorResponse is the JSON error shape for API failures
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &ErrorResponse{Error: message})
}
