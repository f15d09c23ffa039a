package device

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"visitgate/internal/transport/http/shared"
	"visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

// Handler exposes device registration for operators setting up kiosks.
type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/devices", h.handleRegister)
	r.Post("/admin/devices/{deviceID}/deactivate", h.handleDeactivate)
}

type registerRequest struct {
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var locationID *domain.LocationID
	if req.LocationID != "" {
		parsed, err := domain.ParseLocationID(req.LocationID)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "location_id is not valid"))
			return
		}
		locationID = &parsed
	}

	device, secret, err := h.registry.Register(r.Context(), req.Name, locationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	// The plaintext secret appears in this response and nowhere else.
	shared.WriteOK(w, "Device registered.", shared.Fields{
		"DeviceID": device.ID.String(),
		"Secret":   secret,
	})
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseDeviceID(chi.URLParam(r, "deviceID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "device id is not valid"))
		return
	}
	if err := h.registry.Deactivate(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteOK(w, "Device deactivated.", nil)
}
