package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	userdomain "github.com/pickerpack/fulfillment/internal/user/domain"

	"github.com/pickerpack/fulfillment/internal/inventory/domain"
	"github.com/pickerpack/fulfillment/internal/inventory/usecase/command"
	"github.com/pickerpack/fulfillment/internal/inventory/usecase/query"
	"github.com/pickerpack/fulfillment/pkg/httputil"
	"github.com/pickerpack/fulfillment/pkg/logger"
)

// InventoryHandler handles HTTP requests for catalog data and lock
// tags.
type InventoryHandler struct {
	createSKUHandler *command.CreateSKUHandler
	createBinHandler *command.CreateBinHandler
	putawayHandler   *command.PutawayHandler

	stockHandler    *query.StockLevelHandler
	listTagsHandler *query.ListTagsHandler

	catalog domain.CatalogRepository

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	tagsMinted     prometheus.Counter
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(
	createSKUHandler *command.CreateSKUHandler,
	createBinHandler *command.CreateBinHandler,
	putawayHandler *command.PutawayHandler,
	stockHandler *query.StockLevelHandler,
	listTagsHandler *query.ListTagsHandler,
	catalog domain.CatalogRepository,
) *InventoryHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_requests_total",
			Help: "Total number of requests to inventory endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_service_request_duration_seconds",
			Help:    "Duration of inventory endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	tagsMinted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_lock_tags_minted_total",
			Help: "Lock tags minted by putaway",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(tagsMinted)

	return &InventoryHandler{
		createSKUHandler: createSKUHandler,
		createBinHandler: createBinHandler,
		putawayHandler:   putawayHandler,
		stockHandler:     stockHandler,
		listTagsHandler:  listTagsHandler,
		catalog:          catalog,
		requestCounter:   requestCounter,
		requestLatency:   requestLatency,
		tagsMinted:       tagsMinted,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *InventoryHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// CreateSKU handles POST /inventory/skus
func (h *InventoryHandler) CreateSKU(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code          string `json:"code"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		Category      string `json:"category"`
		UnitOfMeasure string `json:"unit_of_measure"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sku, err := h.createSKUHandler.Handle(command.CreateSKUCommand{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		UnitOfMeasure: req.UnitOfMeasure,
	})
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.RespondData(w, http.StatusCreated, sku)
}

// ListSKUs handles GET /inventory/skus
func (h *InventoryHandler) ListSKUs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	skus, err := h.catalog.ListSKUs(limit, offset)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list skus")
		return
	}
	httputil.RespondData(w, http.StatusOK, skus)
}

// CreateBin handles POST /inventory/bins
func (h *InventoryHandler) CreateBin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code      string `json:"code"`
		Warehouse string `json:"warehouse"`
		Zone      string `json:"zone"`
		Capacity  int    `json:"capacity"`
		Status    string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bin, err := h.createBinHandler.Handle(command.CreateBinCommand{
		Code:      req.Code,
		Warehouse: req.Warehouse,
		Zone:      req.Zone,
		Capacity:  req.Capacity,
		Status:    req.Status,
	})
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.RespondData(w, http.StatusCreated, bin)
}

// ListBins handles GET /inventory/bins
func (h *InventoryHandler) ListBins(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	bins, err := h.catalog.ListBins(r.URL.Query().Get("warehouse"), limit, offset)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list bins")
		return
	}
	httputil.RespondData(w, http.StatusOK, bins)
}

// Putaway handles POST /inventory/putaway
func (h *InventoryHandler) Putaway(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKUCode  string `json:"sku_code"`
		BinCode  string `json:"bin_code"`
		BatchID  string `json:"batch_id"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.putawayHandler.Handle(command.PutawayCommand{
		SKUCode:  req.SKUCode,
		BinCode:  req.BinCode,
		BatchID:  req.BatchID,
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, domain.ErrBinOverCapacity) {
			httputil.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		logger.Error(r.Context()).Err(err).
			Str("sku", req.SKUCode).
			Str("bin", req.BinCode).
			Msg("Putaway failed")
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.tagsMinted.Add(float64(len(result.Tags)))
	httputil.RespondJSON(w, http.StatusCreated, httputil.Response{
		Success: true,
		Message: "Stock received",
		Data:    result,
	})
}

// StockLevel handles GET /inventory/stock
func (h *InventoryHandler) StockLevel(w http.ResponseWriter, r *http.Request) {
	result, err := h.stockHandler.Handle(query.StockLevelQuery{
		SKUCode: r.URL.Query().Get("sku"),
		BinCode: r.URL.Query().Get("bin"),
	})
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.RespondData(w, http.StatusOK, result)
}

// ListTags handles GET /inventory/tags
func (h *InventoryHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	skuID, _ := strconv.ParseUint(r.URL.Query().Get("sku_id"), 10, 32)
	binID, _ := strconv.ParseUint(r.URL.Query().Get("bin_id"), 10, 32)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	tags, err := h.listTagsHandler.Handle(query.ListTagsQuery{
		SKUID:  uint(skuID),
		BinID:  uint(binID),
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list tags")
		return
	}
	httputil.RespondData(w, http.StatusOK, tags)
}

// RegisterRoutes registers all inventory routes. Mutations are limited
// to supervisor roles.
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	manage := []string{userdomain.RoleASM, userdomain.RoleStoreManager, userdomain.RoleOpsAdmin}

	router.HandleFunc("/inventory/skus", h.metricsMiddleware("/inventory/skus",
		httputil.RequireRoles(h.CreateSKU, manage...))).Methods("POST")
	router.HandleFunc("/inventory/skus", h.metricsMiddleware("/inventory/skus",
		httputil.AuthMiddleware(h.ListSKUs))).Methods("GET")
	router.HandleFunc("/inventory/bins", h.metricsMiddleware("/inventory/bins",
		httputil.RequireRoles(h.CreateBin, manage...))).Methods("POST")
	router.HandleFunc("/inventory/bins", h.metricsMiddleware("/inventory/bins",
		httputil.AuthMiddleware(h.ListBins))).Methods("GET")
	router.HandleFunc("/inventory/putaway", h.metricsMiddleware("/inventory/putaway",
		httputil.RequireRoles(h.Putaway, manage...))).Methods("POST")
	router.HandleFunc("/inventory/stock", h.metricsMiddleware("/inventory/stock",
		httputil.AuthMiddleware(h.StockLevel))).Methods("GET")
	router.HandleFunc("/inventory/tags", h.metricsMiddleware("/inventory/tags",
		httputil.AuthMiddleware(h.ListTags))).Methods("GET")
}
