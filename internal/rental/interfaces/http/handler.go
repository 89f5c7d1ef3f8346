package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"venue-pos/internal/audit"
	"venue-pos/internal/auth"
	catalog "venue-pos/internal/catalog/domain"
	inventory "venue-pos/internal/inventory/domain"
	"venue-pos/internal/money"
	rentalapp "venue-pos/internal/rental/application"
	rental "venue-pos/internal/rental/domain"
)

// Handler serves rental session endpoints.
type Handler struct {
	engine      *rentalapp.Engine
	auditLogger audit.Logger
}

// NewHandler constructs a rental handler.
func NewHandler(engine *rentalapp.Engine, auditLogger audit.Logger) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("rental handler: nil engine")
	}
	return &Handler{engine: engine, auditLogger: auditLogger}, nil
}

// ServeHTTP routes /api/v1/rentals requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/rentals":
		h.handleListActive(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/rentals/open":
		h.handleOpen(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/rentals/items":
		h.handleAttach(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/rentals/close":
		h.handleClose(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type openRequest struct {
	Device string `json:"device"`
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.Device == "" {
		http.Error(w, "device is required", http.StatusBadRequest)
		return
	}

	session, err := h.engine.Open(r.Context(), req.Device)
	if err != nil {
		respondRentalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(session)
}

type attachRequest struct {
	Device    string      `json:"device"`
	Item      string      `json:"item"`
	Quantity  int         `json:"amount"`
	UnitPrice money.Money `json:"price"`
}

func (h *Handler) handleAttach(w http.ResponseWriter, r *http.Request) {
	var req attachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.Device == "" {
		http.Error(w, "device is required", http.StatusBadRequest)
		return
	}

	items, err := h.engine.Attach(r.Context(), req.Device, req.Item, req.Quantity, req.UnitPrice)
	if err != nil {
		respondRentalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

type closeRequest struct {
	Device string `json:"device"`
}

// closeResponse carries the batch plus any partial-failure detail. The
// close has no cross-step transaction: applied effects stand, and the
// caller reconciles whatever is listed in Errors.
type closeResponse struct {
	rentalapp.CloseResult
	Errors []string `json:"errors,omitempty"`
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if req.Device == "" {
		http.Error(w, "device is required", http.StatusBadRequest)
		return
	}

	result, err := h.engine.Close(r.Context(), req.Device)
	if err != nil && len(result.Records) == 0 {
		respondRentalError(w, err)
		return
	}

	resp := closeResponse{CloseResult: result}
	if err != nil {
		resp.Errors = splitJoined(err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMultiStatus)
		_ = json.NewEncoder(w).Encode(resp)
		h.logClose(r, req.Device, result, resp.Errors)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	h.logClose(r, req.Device, result, nil)
}

func (h *Handler) logClose(r *http.Request, device string, result rentalapp.CloseResult, stepErrors []string) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"duration": result.DurationMinutes,
		"charge":   result.Charge,
		"total":    result.Total,
		"errors":   stepErrors,
	})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "rental.close",
		ResourceType: "rental_session",
		ResourceID:   device,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.engine.ListActive(r.Context())
	if err != nil {
		http.Error(w, "list sessions error", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []rentalapp.ActiveSession{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sessions)
}

// HistoryHandler serves session history endpoints.
type HistoryHandler struct {
	engine *rentalapp.Engine
}

// NewHistoryHandler constructs a history handler.
func NewHistoryHandler(engine *rentalapp.Engine) (*HistoryHandler, error) {
	if engine == nil {
		return nil, errors.New("history handler: nil engine")
	}
	return &HistoryHandler{engine: engine}, nil
}

// ServeHTTP handles POST/GET /api/v1/session-history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *HistoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var record rental.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	created, err := h.engine.CreateHistoryRecord(r.Context(), record)
	if err != nil {
		respondRentalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

func (h *HistoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.engine.ListHistory(r.Context())
	if err != nil {
		http.Error(w, "list history error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []rental.SessionRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

func splitJoined(err error) []string {
	type unwrapper interface {
		Unwrap() []error
	}
	if joined, ok := err.(unwrapper); ok {
		errs := joined.Unwrap()
		result := make([]string, 0, len(errs))
		for _, e := range errs {
			result = append(result, e.Error())
		}
		return result
	}
	return []string{err.Error()}
}

func respondRentalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rental.ErrDeviceBusy):
		http.Error(w, "device already has an open session", http.StatusConflict)
	case errors.Is(err, rental.ErrSessionNotFound):
		http.Error(w, "no open session for device", http.StatusNotFound)
	case errors.Is(err, catalog.ErrDeviceNotFound):
		http.Error(w, "device not found", http.StatusNotFound)
	case errors.Is(err, inventory.ErrNegativeStock):
		http.Error(w, "stock cannot go negative", http.StatusConflict)
	case errors.Is(err, rental.ErrEmptyItem),
		errors.Is(err, rental.ErrInvalidQuantity),
		errors.Is(err, rental.ErrInvalidPrice),
		errors.Is(err, rental.ErrInvalidTimeRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
