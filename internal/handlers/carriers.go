package handlers

import (
	"net/http"

	"courier-tracking/internal/carriers"
)

// CarrierHandler handles HTTP requests for the carrier catalog
type CarrierHandler struct {
	registry *carriers.Registry
}

// NewCarrierHandler creates a new carrier handler
func NewCarrierHandler(registry *carriers.Registry) *CarrierHandler {
	return &CarrierHandler{registry: registry}
}

// CarrierInfo describes one registered carrier
type CarrierInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// GetCarriers handles GET /api/carriers
func (h *CarrierHandler) GetCarriers(w http.ResponseWriter, r *http.Request) {
	codes := h.registry.Available()
	infos := make([]CarrierInfo, 0, len(codes))
	for _, code := range codes {
		carrier, err := h.registry.Create(code)
		if err != nil {
			continue
		}
		infos = append(infos, CarrierInfo{Code: carrier.ID(), Name: carrier.Name()})
	}
	writeJSON(w, http.StatusOK, infos)
}
