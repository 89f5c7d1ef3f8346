package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"venue-pos/internal/audit"
	"venue-pos/internal/auth"
	invapp "venue-pos/internal/inventory/application"
	inventory "venue-pos/internal/inventory/domain"
)

// Handler serves inventory management endpoints.
type Handler struct {
	service     *invapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs an inventory handler.
func NewHandler(service *invapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("inventory handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes /api/v1/inventory requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/inventory/")
	if id == r.URL.Path || id == "" {
		// Collection endpoints.
		switch r.Method {
		case http.MethodPost:
			h.handleAdd(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPatch:
		h.handleAdjust(w, r, id)
	case http.MethodDelete:
		h.handleRemove(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req invapp.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	item, err := h.service.AddItem(r.Context(), req)
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(item)

	h.logAudit(r, "inventory.add", item.ID, item.Label)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, "list inventory error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []inventory.Item{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request, id string) {
	var req invapp.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Price changes are a management action; stock deltas are day-to-day.
	if req.Price != nil && !auth.RoleAtLeast(auth.RoleFromContext(r.Context()), auth.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	item, err := h.service.Adjust(r.Context(), id, req)
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.RemoveItem(r.Context(), id); err != nil {
		respondInventoryError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "item deleted"})

	h.logAudit(r, "inventory.remove", id, "")
}

func (h *Handler) logAudit(r *http.Request, action, itemID, label string) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{"item": label})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "inventory_item",
		ResourceID:   itemID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondInventoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrDuplicateItem):
		http.Error(w, "item already exists", http.StatusConflict)
	case errors.Is(err, inventory.ErrNegativeStock):
		http.Error(w, "stock cannot be negative", http.StatusConflict)
	case errors.Is(err, inventory.ErrItemNotFound):
		http.Error(w, "item not found", http.StatusNotFound)
	case errors.Is(err, inventory.ErrEmptyLabel),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidPrice):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
