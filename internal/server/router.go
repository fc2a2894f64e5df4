package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"courier-tracking/internal/cache"
	"courier-tracking/internal/carriers"
	"courier-tracking/internal/database"
	"courier-tracking/internal/handlers"
)

// New builds the HTTP handler for the tracking API
func New(registry *carriers.Registry, cacheManager *cache.Manager, db *database.DB, logger *slog.Logger) http.Handler {
	trackHandler := handlers.NewTrackHandler(registry, cacheManager, db, logger)
	carrierHandler := handlers.NewCarrierHandler(registry)
	shipmentHandler := handlers.NewShipmentHandler(db, registry)
	healthHandler := handlers.NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(logger))
	r.Use(Recovery(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/carriers", carrierHandler.GetCarriers)
		r.Get("/carriers/{carrier}/track/{trackingNumber}", trackHandler.TrackShipment)

		r.Get("/shipments", shipmentHandler.GetShipments)
		r.Post("/shipments", shipmentHandler.CreateShipment)
		r.Get("/shipments/{id}", shipmentHandler.GetShipmentByID)
		r.Delete("/shipments/{id}", shipmentHandler.DeleteShipment)
		r.Get("/shipments/{id}/events", shipmentHandler.GetShipmentEvents)
	})

	return r
}
