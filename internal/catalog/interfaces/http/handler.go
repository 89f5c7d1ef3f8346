package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"venue-pos/internal/audit"
	"venue-pos/internal/auth"
	catalogapp "venue-pos/internal/catalog/application"
	catalog "venue-pos/internal/catalog/domain"
	"venue-pos/internal/money"
)

// Handler serves device catalog endpoints.
type Handler struct {
	service     *catalogapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a catalog handler.
func NewHandler(service *catalogapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("catalog handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles GET /api/v1/devices and PATCH /api/v1/devices/{name}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w)
	case http.MethodPatch:
		h.handleRateUpdate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.service.List())
}

type rateUpdateRequest struct {
	HourlyRate money.Money `json:"hourly_rate"`
}

func (h *Handler) handleRateUpdate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/devices/")
	if name == "" || strings.Contains(name, "/") {
		http.Error(w, "device name required", http.StatusBadRequest)
		return
	}

	var req rateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	device, err := h.service.SetHourlyRate(name, req.HourlyRate)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(device)

	if h.auditLogger != nil {
		meta, _ := json.Marshal(map[string]any{"hourly_rate": device.HourlyRate})
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "device.rate_update",
			ResourceType: "device",
			ResourceID:   device.Name,
			Metadata:     meta,
			IP:           audit.ClientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
}

func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrDeviceNotFound):
		http.Error(w, "device not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrNegativeRate):
		http.Error(w, "hourly rate cannot be negative", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
