package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/eugenenazirov/pack-orders/internal/catalog"
	"github.com/eugenenazirov/pack-orders/internal/metrics"
	"github.com/eugenenazirov/pack-orders/internal/order"
	"github.com/eugenenazirov/pack-orders/internal/report"
	"github.com/eugenenazirov/pack-orders/internal/resolver"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxOrderBodyBytes = 1 << 20

// Handler wires the catalog, resolver and order processor into HTTP handlers.
type Handler struct {
	store     catalog.Store
	resolver  *resolver.Resolver
	processor *order.Processor
	recorder  *metrics.Recorder

	clock func() time.Time

	mu               sync.RWMutex
	catalogUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics enables resolution metrics and the metrics endpoint.
func WithMetrics(recorder *metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		h.recorder = recorder
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store catalog.Store, res *resolver.Resolver, processor *order.Processor, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:     store,
		resolver:  res,
		processor: processor,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.catalogUpdatedAt = h.clock()
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

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := productsResponse{
		Products:  h.store.Products(),
		UpdatedAt: h.currentCatalogUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.Lookup(r.PathValue("code"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handlePutProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	product := catalog.Product{
		Code:  r.PathValue("code"),
		Name:  req.Name,
		Packs: make([]catalog.PackEntry, 0, len(req.Packs)),
	}
	for _, p := range req.Packs {
		product.Packs = append(product.Packs, catalog.PackEntry{Size: p.Size.String(), Price: p.Price.String()})
	}
	if len(product.Catalog()) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid packs", "packs must contain at least one entry with a positive integer size and a non-negative price")
		return
	}

	if err := h.store.SetProduct(product); err != nil {
		if errors.Is(err, catalog.ErrInvalidProduct) {
			writeError(w, http.StatusBadRequest, "Invalid product", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markCatalogUpdated()

	stored, err := h.store.Lookup(product.Code)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := productUpdateResponse{
		Product:   stored,
		UpdatedAt: h.currentCatalogUpdatedAt(),
		Message:   "Product updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	product, err := h.store.Lookup(req.ProductCode)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	start := time.Now()
	result := h.resolver.Resolve(product.Catalog(), req.Quantity)
	elapsed := time.Since(start)

	if h.recorder != nil {
		h.recorder.ObserveResolution(h.resolver.Policy(), result.Status, elapsed)
	}

	resp := resolveResponse{
		ProductCode:       product.Code,
		ProductName:       product.Name,
		Policy:            string(h.resolver.Policy()),
		Result:            report.NewResult(result),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	if err := result.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxOrderBodyBytes)
	results, err := h.processor.Process(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Order file too large", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ordersResponse{Lines: report.NewLines(results)})
}

func (h *Handler) currentCatalogUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalogUpdatedAt
}

func (h *Handler) markCatalogUpdated() {
	h.mu.Lock()
	h.catalogUpdatedAt = h.clock()
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

type packRequest struct {
	Size  json.Number `json:"size"`
	Price json.Number `json:"price"`
}

type productRequest struct {
	Name  string        `json:"name"`
	Packs []packRequest `json:"packs"`
}

type resolveRequest struct {
	ProductCode string `json:"productCode"`
	Quantity    any    `json:"quantity"`
}

type resolveResponse struct {
	ProductCode       string        `json:"productCode"`
	ProductName       string        `json:"productName,omitempty"`
	Policy            string        `json:"policy"`
	Result            report.Result `json:"result"`
	Error             string        `json:"error,omitempty"`
	CalculationTimeMs int64         `json:"calculationTimeMs"`
}

type ordersResponse struct {
	Lines []report.Line `json:"lines"`
}

type productsResponse struct {
	Products  []catalog.Product `json:"products"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type productUpdateResponse struct {
	Product   catalog.Product `json:"product"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Message   string          `json:"message,omitempty"`
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

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Item not found", err.Error(), "GET /api/products lists the available product codes")
		return
	}
	writeInternalError(w, err)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", strings.TrimSpace(err.Error()))
}
