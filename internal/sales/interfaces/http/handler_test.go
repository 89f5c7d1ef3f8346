package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	salesapp "venue-pos/internal/sales/application"
	sales "venue-pos/internal/sales/domain"
	"venue-pos/internal/sales/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newSalesFixture(t *testing.T) (*Handler, *IncomeHandler) {
	t.Helper()
	repo := memory.NewRepository()
	clock := fixedClock{now: time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)}
	recorder, err := salesapp.NewRecorder(repo, clock)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	income, err := salesapp.NewIncomeService(repo, clock, time.UTC)
	if err != nil {
		t.Fatalf("income service: %v", err)
	}
	handler, err := NewHandler(recorder)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	incomeHandler, err := NewIncomeHandler(income)
	if err != nil {
		t.Fatalf("income handler: %v", err)
	}
	return handler, incomeHandler
}

func TestSalesHandler_CreateAssignsServerTimestamp(t *testing.T) {
	handler, _ := newSalesFixture(t)

	body := `{"category":"Snack","item":"Cola","amount":2,"price":300,"timestamp":"2020-01-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var record sales.Record
	if err := json.Unmarshal(resp.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.ID == "" {
		t.Fatalf("expected generated id")
	}
	want := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	if !record.Timestamp.Equal(want) {
		t.Fatalf("expected server timestamp %s, got %s", want, record.Timestamp)
	}
}

func TestSalesHandler_CreateValidation(t *testing.T) {
	handler, _ := newSalesFixture(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing item", `{"category":"Snack","amount":1,"price":300}`},
		{"zero quantity", `{"category":"Snack","item":"Cola","amount":0,"price":300}`},
		{"negative price", `{"category":"Snack","item":"Cola","amount":1,"price":-1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(tc.body))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

func TestSalesHandler_ListByCategory(t *testing.T) {
	handler, _ := newSalesFixture(t)

	for _, body := range []string{
		`{"category":"Snack","item":"Cola","amount":1,"price":300}`,
		`{"category":"PS5","item":"PS5 #1","amount":1,"price":9000}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("seed sale: %d", resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?category=Snack", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var records []sales.Record
	if err := json.Unmarshal(resp.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 1 || records[0].Item != "Cola" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestIncomeHandler_DayWindow(t *testing.T) {
	handler, incomeHandler := newSalesFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(`{"category":"Snack","item":"Cola","amount":2,"price":300}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("seed sale: %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/income/day", nil)
	resp = httptest.NewRecorder()
	incomeHandler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var summary struct {
		Period      string  `json:"period"`
		TotalIncome float64 `json:"totalIncome"`
		Count       int     `json:"count"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Period != "day" || summary.Count != 1 || summary.TotalIncome != 300 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestIncomeHandler_InvalidPeriod(t *testing.T) {
	_, incomeHandler := newSalesFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/income/fortnight", nil)
	resp := httptest.NewRecorder()
	incomeHandler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestIncomeHandler_Category(t *testing.T) {
	handler, incomeHandler := newSalesFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(`{"category":"PS5","item":"PS5 #1","amount":1,"price":9000}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("seed sale: %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/income/category/PS5", nil)
	resp = httptest.NewRecorder()
	incomeHandler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var summary struct {
		Category    string  `json:"category"`
		TotalIncome float64 `json:"totalIncome"`
		Count       int     `json:"count"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Category != "PS5" || summary.Count != 1 || summary.TotalIncome != 9000 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
