package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/waffle-charts/internal/api"
	"github.com/eugenenazirov/waffle-charts/internal/apportion"
	"github.com/eugenenazirov/waffle-charts/internal/config"
	"github.com/eugenenazirov/waffle-charts/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage   storage.Storage
	allocator apportion.Allocator
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetPalette(cfg.InitialPalette); err != nil {
		return nil, fmt.Errorf("failed to apply initial palette: %w", err)
	}

	allocator := apportion.New()
	handler := api.NewHandler(allocator, store)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler := BuildRootHandler(apiRouter)
	server := NewServer(cfg, rootHandler)

	return &App{
		storage:   store,
		allocator: allocator,
		handler:   handler,
		router:    apiRouter,
		logger:    logger,
		server:    server,
	}, nil
}

// BuildRootHandler constructs the root HTTP handler. API requests are routed to
// the provided handler; the root path answers with a small service descriptor
// so the API is discoverable without documentation at hand.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(serviceDescriptor())
	}))

	return mux
}

func serviceDescriptor() map[string]any {
	return map[string]any{
		"service": "waffle-charts",
		"endpoints": []string{
			"GET /api/health",
			"GET /api/palette",
			"PUT /api/palette",
			"POST /api/allocate",
			"POST /api/waffle",
		},
	}
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
