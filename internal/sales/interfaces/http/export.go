package http

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"venue-pos/internal/money"
	"venue-pos/internal/observability/metrics"
	salesapp "venue-pos/internal/sales/application"
	sales "venue-pos/internal/sales/domain"
)

// ExportHandler serves income report downloads.
type ExportHandler struct {
	income *salesapp.IncomeService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(income *salesapp.IncomeService) (*ExportHandler, error) {
	if income == nil {
		return nil, errors.New("export handler: nil service")
	}
	return &ExportHandler{income: income}, nil
}

// ServeHTTP handles GET /api/v1/exports/income.{pdf,xlsx} and
// GET /api/v1/exports/sales.csv, all scoped by ?period=.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	format := exportFormat(r.URL.Path)
	if format == "" {
		http.Error(w, "unknown export", http.StatusNotFound)
		return
	}

	period := salesapp.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = salesapp.PeriodDay
	}
	started := time.Now()
	records, windowStart, err := h.income.RecordsSince(r.Context(), period)
	if err != nil {
		metrics.ObserveExport(format, "error", time.Since(started))
		respondSalesError(w, err)
		return
	}

	var payload []byte
	var contentType, filename string
	switch format {
	case "pdf":
		payload, err = buildIncomePDF(period, windowStart, records)
		contentType = "application/pdf"
		filename = "income." + string(period) + ".pdf"
	case "xlsx":
		payload, err = buildIncomeXLSX(period, windowStart, records)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "income." + string(period) + ".xlsx"
	case "csv":
		payload, err = buildSalesCSV(records)
		contentType = "text/csv"
		filename = "sales." + string(period) + ".csv"
	}
	if err != nil {
		metrics.ObserveExport(format, "error", time.Since(started))
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, "success", time.Since(started))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(payload)
}

func exportFormat(path string) string {
	switch {
	case strings.HasSuffix(path, "/income.pdf"):
		return "pdf"
	case strings.HasSuffix(path, "/income.xlsx"):
		return "xlsx"
	case strings.HasSuffix(path, "/sales.csv"):
		return "csv"
	default:
		return ""
	}
}

func buildIncomePDF(period salesapp.Period, windowStart time.Time, records []sales.Record) ([]byte, error) {
	total := summarize(records)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Income Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", period))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Window start: %s", windowStart.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Sales: %d", len(records)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total income: %s", total))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Price", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, record := range records {
		pdf.CellFormat(35, 6, record.Timestamp.Format("01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, record.Category, "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 6, record.Item, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, strconv.Itoa(record.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, record.Price.String(), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildIncomeXLSX(period salesapp.Period, windowStart time.Time, records []sales.Record) ([]byte, error) {
	total := summarize(records)

	f := excelize.NewFile()
	summarySheet := "summary"
	salesSheet := "sales"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(salesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Income Report")
	_ = f.SetCellValue(summarySheet, "A3", "Period")
	_ = f.SetCellValue(summarySheet, "B3", string(period))
	_ = f.SetCellValue(summarySheet, "A4", "Window start")
	_ = f.SetCellValue(summarySheet, "B4", windowStart.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Sales")
	_ = f.SetCellValue(summarySheet, "B5", len(records))
	_ = f.SetCellValue(summarySheet, "A6", "Total income")
	_ = f.SetCellValue(summarySheet, "B6", total)

	_ = f.SetCellValue(salesSheet, "A1", "Time")
	_ = f.SetCellValue(salesSheet, "B1", "Category")
	_ = f.SetCellValue(salesSheet, "C1", "Item")
	_ = f.SetCellValue(salesSheet, "D1", "Qty")
	_ = f.SetCellValue(salesSheet, "E1", "Price")
	for i, record := range records {
		row := i + 2
		_ = f.SetCellValue(salesSheet, fmt.Sprintf("A%d", row), record.Timestamp.Format(time.RFC3339))
		_ = f.SetCellValue(salesSheet, fmt.Sprintf("B%d", row), record.Category)
		_ = f.SetCellValue(salesSheet, fmt.Sprintf("C%d", row), record.Item)
		_ = f.SetCellValue(salesSheet, fmt.Sprintf("D%d", row), record.Quantity)
		_ = f.SetCellValue(salesSheet, fmt.Sprintf("E%d", row), record.Price.String())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildSalesCSV(records []sales.Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"id", "timestamp", "category", "item", "quantity", "price"}); err != nil {
		return nil, err
	}
	for _, record := range records {
		row := []string{
			record.ID,
			record.Timestamp.Format(time.RFC3339),
			record.Category,
			record.Item,
			strconv.Itoa(record.Quantity),
			record.Price.String(),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summarize(records []sales.Record) string {
	var total money.Money
	for _, record := range records {
		total += record.Price
	}
	return total.String()
}
