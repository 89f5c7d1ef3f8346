package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	salesapp "venue-pos/internal/sales/application"
	sales "venue-pos/internal/sales/domain"
)

// Handler serves sale create/list endpoints.
type Handler struct {
	recorder *salesapp.Recorder
}

// NewHandler constructs a sales handler.
func NewHandler(recorder *salesapp.Recorder) (*Handler, error) {
	if recorder == nil {
		return nil, errors.New("sales handler: nil recorder")
	}
	return &Handler{recorder: recorder}, nil
}

// ServeHTTP handles POST/GET /api/v1/sales.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req salesapp.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	record, err := h.recorder.Record(r.Context(), req)
	if err != nil {
		respondSalesError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var records []sales.Record
	var err error
	if category := r.URL.Query().Get("category"); category != "" {
		records, err = h.recorder.ListByCategory(r.Context(), category)
	} else {
		records, err = h.recorder.ListAll(r.Context())
	}
	if err != nil {
		http.Error(w, "list sales error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []sales.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

// IncomeHandler serves income aggregation endpoints.
type IncomeHandler struct {
	income *salesapp.IncomeService
}

// NewIncomeHandler constructs an income handler.
func NewIncomeHandler(income *salesapp.IncomeService) (*IncomeHandler, error) {
	if income == nil {
		return nil, errors.New("income handler: nil service")
	}
	return &IncomeHandler{income: income}, nil
}

// ServeHTTP handles GET /api/v1/income/{period} and
// GET /api/v1/income/category/{category}.
func (h *IncomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/income/")
	if rest == "" || rest == r.URL.Path {
		http.Error(w, "period required", http.StatusBadRequest)
		return
	}

	if category, ok := strings.CutPrefix(rest, "category/"); ok {
		summary, err := h.income.IncomeForCategory(r.Context(), category)
		if err != nil {
			respondSalesError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Category string `json:"category"`
			salesapp.IncomeSummary
		}{Category: category, IncomeSummary: summary})
		return
	}

	period := salesapp.Period(rest)
	summary, err := h.income.IncomeForWindow(r.Context(), period)
	if err != nil {
		respondSalesError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Period string `json:"period"`
		salesapp.IncomeSummary
	}{Period: string(period), IncomeSummary: summary})
}

func respondSalesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sales.ErrInvalidPeriod),
		errors.Is(err, sales.ErrMissingField),
		errors.Is(err, sales.ErrInvalidQuantity),
		errors.Is(err, sales.ErrInvalidPrice):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
