package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "carpulse/internal/errors"
	"carpulse/internal/middleware"
	"carpulse/internal/services"
	api "carpulse/pkg/contracts/api/v1"
)

// PricingHandler serves the market pricing endpoints
type PricingHandler struct {
	service      *services.PricingService
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(service *services.PricingService, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "pricing")),
	}
}

// RegisterRoutes registers the pricing routes
func (h *PricingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Post("/snapshot", h.Snapshot)
		r.Post("/kilometraje", h.Kilometraje)
		r.Get("/params", h.Params)
	})
}

// Snapshot handles POST /market/snapshot
func (h *PricingHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	var req api.MarketSnapshotRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), api.Listings(req.Comparables), req.Vehicle.Descriptor())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.MarketSnapshotResponse{
		Snapshot:   snapshot,
		Fallback:   snapshot.IsFallback(),
		ComputedAt: time.Now().UTC(),
	})
}

// Kilometraje handles POST /market/kilometraje
func (h *PricingHandler) Kilometraje(w http.ResponseWriter, r *http.Request) {
	var req api.KilometrajeRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, source, err := h.service.Kilometraje(r.Context(), services.KilometrajeInput{
		Vehicle:            req.Vehicle.Descriptor(),
		SelectedOdometerKm: req.SelectedOdometerKm,
		BasePrice:          req.BasePrice,
		Comparables:        api.Listings(req.Comparables),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.KilometrajeResponse{
		Adjustment: result,
		BaseSource: source,
	})
}

// Params handles GET /market/params
func (h *PricingHandler) Params(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.ParamsResponse{
		Params:        h.service.Params(),
		ReferenceYear: h.service.ReferenceYear(),
	})
}
