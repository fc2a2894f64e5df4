package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"courier-tracking/internal/carriers"
	"courier-tracking/internal/database"
)

// ShipmentHandler handles HTTP requests for the persisted watch list
type ShipmentHandler struct {
	db       *database.DB
	registry *carriers.Registry
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(db *database.DB, registry *carriers.Registry) *ShipmentHandler {
	return &ShipmentHandler{db: db, registry: registry}
}

// GetShipments handles GET /api/shipments
func (h *ShipmentHandler) GetShipments(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.db.Shipments.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shipments: "+err.Error())
		return
	}
	if shipments == nil {
		shipments = []database.Shipment{}
	}
	writeJSON(w, http.StatusOK, shipments)
}

// CreateShipmentRequest is the payload for POST /api/shipments
type CreateShipmentRequest struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
	Description    string `json:"description"`
}

// CreateShipment handles POST /api/shipments
func (h *ShipmentHandler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var req CreateShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.TrackingNumber = strings.TrimSpace(req.TrackingNumber)
	req.Carrier = strings.ToLower(strings.TrimSpace(req.Carrier))
	if req.TrackingNumber == "" || req.Carrier == "" {
		writeError(w, http.StatusBadRequest, "tracking_number and carrier are required")
		return
	}
	if _, err := h.registry.Create(req.Carrier); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	shipment := &database.Shipment{
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
		Description:    req.Description,
	}
	if err := h.db.Shipments.Create(shipment); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			writeError(w, http.StatusConflict, "shipment already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create shipment: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, shipment)
}

// GetShipmentByID handles GET /api/shipments/{id}
func (h *ShipmentHandler) GetShipmentByID(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	shipment, err := h.db.Shipments.GetByID(id)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "shipment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get shipment: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, shipment)
}

// DeleteShipment handles DELETE /api/shipments/{id}
func (h *ShipmentHandler) DeleteShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	err := h.db.Shipments.Delete(id)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "shipment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete shipment: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetShipmentEvents handles GET /api/shipments/{id}/events
func (h *ShipmentHandler) GetShipmentEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := shipmentID(w, r)
	if !ok {
		return
	}
	if _, err := h.db.Shipments.GetByID(id); err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "shipment not found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get shipment: "+err.Error())
		return
	}

	events, err := h.db.TrackingEvents.GetByShipmentID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events: "+err.Error())
		return
	}
	if events == nil {
		events = []database.TrackingEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func shipmentID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid shipment ID")
		return 0, false
	}
	return id, true
}
