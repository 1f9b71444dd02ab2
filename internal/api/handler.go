package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/waffle-charts/internal/apportion"
	"github.com/eugenenazirov/waffle-charts/internal/storage"
	"github.com/eugenenazirov/waffle-charts/internal/waffle"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires allocator and storage dependencies into HTTP handlers.
type Handler struct {
	allocator apportion.Allocator
	storage   storage.Storage

	clock func() time.Time

	mu               sync.RWMutex
	paletteUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(allocator apportion.Allocator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		allocator: allocator,
		storage:   store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.paletteUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPalette(w http.ResponseWriter, r *http.Request) {
	_ = r
	colors, err := h.storage.GetPalette()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := paletteResponse{
		Palette:   colors,
		UpdatedAt: h.currentPaletteUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutPalette(w http.ResponseWriter, r *http.Request) {
	var req paletteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Palette) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid palette", "palette must contain at least one color")
		return
	}

	if err := h.storage.SetPalette(req.Palette); err != nil {
		if errors.Is(err, storage.ErrInvalidPalette) {
			writeError(w, http.StatusBadRequest, "Invalid palette", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markPaletteUpdated()

	colors, err := h.storage.GetPalette()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := paletteResponse{
		Palette:   colors,
		UpdatedAt: h.currentPaletteUpdatedAt(),
		Message:   "Palette updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAllocate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAllocateRequest(w, r)
	if !ok {
		return
	}

	result, elapsed, ok := h.apportionFromRequest(w, req)
	if !ok {
		return
	}

	resp := allocateResponse{
		Cells:             result.Cells,
		Quotas:            result.Quotas,
		TotalObservations: result.TotalObservations,
		Categories:        len(result.Cells),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleWaffle(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAllocateRequest(w, r)
	if !ok {
		return
	}

	result, elapsed, ok := h.apportionFromRequest(w, req)
	if !ok {
		return
	}

	palette, err := h.storage.GetPalette()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	grid, legend, err := waffle.Build(result.Cells, palette)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := waffleResponse{
		allocateResponse: allocateResponse{
			Cells:             result.Cells,
			Quotas:            result.Quotas,
			TotalObservations: result.TotalObservations,
			Categories:        len(result.Cells),
			CalculationTimeMs: elapsed.Milliseconds(),
		},
		Grid:   grid,
		Legend: legend,
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeAllocateRequest parses the shared allocate/waffle payload and reports
// malformed bodies to the client. The boolean is false when a response has
// already been written.
func decodeAllocateRequest(w http.ResponseWriter, r *http.Request) (allocateRequest, bool) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return allocateRequest{}, false
	}

	if len(req.Frequencies) > 0 && len(req.Observations) > 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "provide either frequencies or observations, not both")
		return allocateRequest{}, false
	}
	if len(req.Frequencies) == 0 && len(req.Observations) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "frequencies or observations must be provided")
		return allocateRequest{}, false
	}

	return req, true
}

// apportionFromRequest resolves the frequency table, runs the allocator, and
// maps domain errors to HTTP statuses. The boolean is false when a response
// has already been written.
func (h *Handler) apportionFromRequest(w http.ResponseWriter, req allocateRequest) (apportion.Result, time.Duration, bool) {
	frequencies := req.Frequencies
	if len(frequencies) == 0 {
		frequencies = apportion.Tally(req.Observations)
	}

	start := time.Now()
	cells, err := h.allocator.Allocate(frequencies)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, apportion.ErrEmptyFrequencies):
			writeError(w, http.StatusBadRequest, "Invalid frequencies", err.Error(), "supply at least one category with a positive count")
		case errors.Is(err, apportion.ErrZeroTotal):
			writeError(w, http.StatusBadRequest, "Invalid frequencies", err.Error(), "supply at least one category with a positive count")
		case errors.Is(err, apportion.ErrNegativeCount):
			writeError(w, http.StatusBadRequest, "Invalid frequencies", err.Error())
		default:
			writeInternalError(w, err)
		}
		return apportion.Result{}, 0, false
	}

	quotas, err := apportion.Quotas(frequencies)
	if err != nil {
		// Allocate already validated the input, so this cannot happen.
		writeInternalError(w, err)
		return apportion.Result{}, 0, false
	}

	total := 0
	for _, count := range frequencies {
		total += count
	}

	result := apportion.Result{
		Cells:             cells,
		Quotas:            quotas,
		TotalObservations: total,
	}
	return result, elapsed, true
}

func (h *Handler) currentPaletteUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.paletteUpdatedAt
}

func (h *Handler) markPaletteUpdated() {
	h.mu.Lock()
	h.paletteUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type paletteRequest struct {
	Palette []string `json:"palette"`
}

type allocateRequest struct {
	Frequencies  map[string]int `json:"frequencies,omitempty"`
	Observations []string       `json:"observations,omitempty"`
}

type allocateResponse struct {
	Cells             map[string]int     `json:"cells"`
	Quotas            map[string]float64 `json:"quotas"`
	TotalObservations int                `json:"totalObservations"`
	Categories        int                `json:"categories"`
	CalculationTimeMs int64              `json:"calculationTimeMs"`
}

type waffleResponse struct {
	allocateResponse
	Grid   waffle.Grid   `json:"grid"`
	Legend waffle.Legend `json:"legend"`
}

type paletteResponse struct {
	Palette   []string  `json:"palette"`
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
