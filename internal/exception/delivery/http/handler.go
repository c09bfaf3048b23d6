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

	"github.com/pickerpack/fulfillment/internal/exception/domain"
	"github.com/pickerpack/fulfillment/internal/exception/usecase/command"
	"github.com/pickerpack/fulfillment/internal/exception/usecase/query"
	"github.com/pickerpack/fulfillment/pkg/httputil"
	"github.com/pickerpack/fulfillment/pkg/logger"
)

// ExceptionHandler handles HTTP requests for floor exceptions.
type ExceptionHandler struct {
	reportHandler *command.ReportExceptionHandler
	reviewHandler *command.ReviewExceptionHandler
	listHandler   *query.ListExceptionsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	reported       *prometheus.CounterVec
}

// NewExceptionHandler creates a new exception handler.
func NewExceptionHandler(
	reportHandler *command.ReportExceptionHandler,
	reviewHandler *command.ReviewExceptionHandler,
	listHandler *query.ListExceptionsHandler,
) *ExceptionHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exception_service_requests_total",
			Help: "Total number of requests to exception endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exception_service_request_duration_seconds",
			Help:    "Duration of exception endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	reported := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exception_reports_total",
			Help: "Exceptions reported by workers, by type",
		},
		[]string{"type"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(reported)

	return &ExceptionHandler{
		reportHandler:  reportHandler,
		reviewHandler:  reviewHandler,
		listHandler:    listHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		reported:       reported,
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
func (h *ExceptionHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// Report handles POST /exceptions
func (h *ExceptionHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req struct {
		Type        string   `json:"type"`
		TaskID      *uint    `json:"task_id"`
		SKUID       *uint    `json:"sku_id"`
		LockTagID   *uint    `json:"lock_tag_id"`
		BinID       *uint    `json:"bin_id"`
		Description string   `json:"description"`
		Photos      []string `json:"photos"`
		Quantity    int      `json:"quantity"`
		OldTag      string   `json:"old_tag"`
		NewTag      string   `json:"new_tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	exc, err := h.reportHandler.Handle(command.ReportExceptionCommand{
		UserID:      userID,
		Type:        req.Type,
		TaskID:      req.TaskID,
		SKUID:       req.SKUID,
		LockTagID:   req.LockTagID,
		BinID:       req.BinID,
		Description: req.Description,
		PhotoURIs:   req.Photos,
		Quantity:    req.Quantity,
		OldTagCode:  req.OldTag,
		NewTagCode:  req.NewTag,
	})
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.reported.WithLabelValues(exc.Type).Inc()
	httputil.RespondJSON(w, http.StatusCreated, httputil.Response{
		Success: true,
		Message: "Exception reported",
		Data:    exc,
	})
}

// ListMine handles GET /exceptions
func (h *ExceptionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	exceptions, err := h.list(r, userID)
	if err != nil {
		logger.Error(r.Context()).Err(err).Uint("user_id", userID).Msg("Failed to list exceptions")
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list exceptions")
		return
	}
	httputil.RespondData(w, http.StatusOK, exceptions)
}

// ListAll handles GET /admin/exceptions
func (h *ExceptionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	exceptions, err := h.list(r, 0)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list exceptions")
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list exceptions")
		return
	}
	httputil.RespondData(w, http.StatusOK, exceptions)
}

func (h *ExceptionHandler) list(r *http.Request, userID uint) ([]domain.Exception, error) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	return h.listHandler.Handle(query.ListExceptionsQuery{
		UserID: userID,
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
		Limit:  limit,
		Offset: offset,
	})
}

// Review handles POST /admin/exceptions/{id}/review
func (h *ExceptionHandler) Review(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := httputil.UserID(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid exception ID")
		return
	}

	var req struct {
		Status     string `json:"status"`
		Resolution string `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	exc, err := h.reviewHandler.Handle(command.ReviewExceptionCommand{
		ExceptionID: uint(id),
		ReviewerID:  reviewerID,
		Status:      req.Status,
		Resolution:  req.Resolution,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExceptionNotFound):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrAlreadyReviewed):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrInvalidStatus):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error(r.Context()).Err(err).Uint64("exception_id", id).Msg("Failed to review exception")
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to review exception")
		}
		return
	}

	httputil.RespondData(w, http.StatusOK, exc)
}

// RegisterRoutes registers all exception routes. Reviewing is
// restricted to managing roles.
func (h *ExceptionHandler) RegisterRoutes(router *mux.Router) {
	manage := []string{userdomain.RoleASM, userdomain.RoleStoreManager, userdomain.RoleOpsAdmin}

	router.HandleFunc("/exceptions", h.metricsMiddleware("/exceptions",
		httputil.AuthMiddleware(h.Report))).Methods("POST")
	router.HandleFunc("/exceptions", h.metricsMiddleware("/exceptions",
		httputil.AuthMiddleware(h.ListMine))).Methods("GET")

	router.HandleFunc("/admin/exceptions", h.metricsMiddleware("/admin/exceptions",
		httputil.RequireRoles(h.ListAll, manage...))).Methods("GET")
	router.HandleFunc("/admin/exceptions/{id}/review", h.metricsMiddleware("/admin/exceptions/{id}/review",
		httputil.RequireRoles(h.Review, manage...))).Methods("POST")
}
