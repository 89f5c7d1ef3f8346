package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"venue-pos/internal/audit"
	"venue-pos/internal/auth"
	catalogapp "venue-pos/internal/catalog/application"
	catalogconfig "venue-pos/internal/catalog/infrastructure/config"
	cataloghttp "venue-pos/internal/catalog/interfaces/http"
	invapp "venue-pos/internal/inventory/application"
	invrepo "venue-pos/internal/inventory/infrastructure/postgres"
	invhttp "venue-pos/internal/inventory/interfaces/http"
	invnotify "venue-pos/internal/inventory/notify"
	"venue-pos/internal/observability/metrics"
	rentalapp "venue-pos/internal/rental/application"
	rentalmemory "venue-pos/internal/rental/infrastructure/memory"
	rentalrepo "venue-pos/internal/rental/infrastructure/postgres"
	rentalhttp "venue-pos/internal/rental/interfaces/http"
	salesapp "venue-pos/internal/sales/application"
	salesrepo "venue-pos/internal/sales/infrastructure/postgres"
	saleshttp "venue-pos/internal/sales/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	location := time.Local
	if cfg.VenueTZ != "" {
		location, err = time.LoadLocation(cfg.VenueTZ)
		if err != nil {
			logger.Fatalf("venue timezone error: %v", err)
		}
	}

	devices, err := catalogconfig.LoadDevices(cfg.CatalogPath)
	if err != nil {
		logger.Fatalf("device catalog error: %v", err)
	}
	catalogService, err := catalogapp.NewService(devices)
	if err != nil {
		logger.Fatalf("catalog service error: %v", err)
	}
	catalogHandler, err := cataloghttp.NewHandler(catalogService, auditRepo)
	if err != nil {
		logger.Fatalf("catalog handler error: %v", err)
	}

	var invOpts []invapp.Option
	if cfg.LowStockWebhookURL != "" {
		invOpts = append(invOpts, invapp.WithNotifier(invnotify.NewWebhookNotifier(cfg.LowStockWebhookURL)))
	}
	inventoryService, err := invapp.NewService(invrepo.NewRepository(db), logger, invOpts...)
	if err != nil {
		logger.Fatalf("inventory service error: %v", err)
	}
	inventoryHandler, err := invhttp.NewHandler(inventoryService, auditRepo)
	if err != nil {
		logger.Fatalf("inventory handler error: %v", err)
	}

	salesRepo := salesrepo.NewRepository(db)
	recorder, err := salesapp.NewRecorder(salesRepo, systemClock{})
	if err != nil {
		logger.Fatalf("sales recorder error: %v", err)
	}
	incomeService, err := salesapp.NewIncomeService(salesRepo, systemClock{}, location)
	if err != nil {
		logger.Fatalf("income service error: %v", err)
	}
	salesHandler, err := saleshttp.NewHandler(recorder)
	if err != nil {
		logger.Fatalf("sales handler error: %v", err)
	}
	incomeHandler, err := saleshttp.NewIncomeHandler(incomeService)
	if err != nil {
		logger.Fatalf("income handler error: %v", err)
	}
	exportHandler, err := saleshttp.NewExportHandler(incomeService)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}

	engine, err := rentalapp.NewEngine(
		rentalmemory.NewOpenSessionRepository(),
		rentalrepo.NewHistoryRepository(db),
		catalogService,
		recorder,
		inventoryService,
		systemClock{},
	)
	if err != nil {
		logger.Fatalf("rental engine error: %v", err)
	}
	rentalHandler, err := rentalhttp.NewHandler(engine, auditRepo)
	if err != nil {
		logger.Fatalf("rental handler error: %v", err)
	}
	historyHandler, err := rentalhttp.NewHistoryHandler(engine)
	if err != nil {
		logger.Fatalf("history handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/sales", salesHandler)
	mux.Handle("/api/v1/income/", incomeHandler)
	mux.Handle("/api/v1/inventory", inventoryHandler)
	mux.Handle("/api/v1/inventory/", inventoryHandler)
	mux.Handle("/api/v1/devices", catalogHandler)
	mux.Handle("/api/v1/devices/", catalogHandler)
	mux.Handle("/api/v1/rentals", rentalHandler)
	mux.Handle("/api/v1/rentals/", rentalHandler)
	mux.Handle("/api/v1/session-history", historyHandler)
	mux.Handle("/api/v1/exports/", exportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL        string
	HTTPAddr           string
	JWTSecret          string
	VenueTZ            string
	CatalogPath        string
	LowStockWebhookURL string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:        getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:          getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		VenueTZ:            getenvDefault("VENUE_TZ", ""),
		CatalogPath:        getenvDefault("CATALOG_PATH", ""),
		LowStockWebhookURL: getenvDefault("LOW_STOCK_WEBHOOK_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
