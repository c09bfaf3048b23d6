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

	"github.com/pickerpack/fulfillment/internal/shift/domain"
	"github.com/pickerpack/fulfillment/internal/shift/usecase/command"
	"github.com/pickerpack/fulfillment/internal/shift/usecase/query"
	"github.com/pickerpack/fulfillment/pkg/httputil"
	"github.com/pickerpack/fulfillment/pkg/logger"
)

// ShiftHandler handles HTTP requests for shifts and geofences.
type ShiftHandler struct {
	startHandler          *command.StartShiftHandler
	endHandler            *command.EndShiftHandler
	upsertGeofenceHandler *command.UpsertGeofenceHandler
	deleteGeofenceHandler *command.DeleteGeofenceHandler

	activeHandler *query.ActiveShiftHandler

	geofences domain.GeofenceRepository

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	activeShifts   prometheus.Gauge
	geoRejections  prometheus.Counter
}

// NewShiftHandler creates a new shift handler.
func NewShiftHandler(
	startHandler *command.StartShiftHandler,
	endHandler *command.EndShiftHandler,
	upsertGeofenceHandler *command.UpsertGeofenceHandler,
	deleteGeofenceHandler *command.DeleteGeofenceHandler,
	activeHandler *query.ActiveShiftHandler,
	geofences domain.GeofenceRepository,
) *ShiftHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shift_service_requests_total",
			Help: "Total number of requests to shift endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shift_service_request_duration_seconds",
			Help:    "Duration of shift endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	activeShifts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shift_service_active_shifts",
			Help: "Number of currently active shifts",
		},
	)

	geoRejections := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shift_service_geofence_rejections_total",
			Help: "Clock-in attempts rejected by the geofence",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(activeShifts)
	prometheus.MustRegister(geoRejections)

	return &ShiftHandler{
		startHandler:          startHandler,
		endHandler:            endHandler,
		upsertGeofenceHandler: upsertGeofenceHandler,
		deleteGeofenceHandler: deleteGeofenceHandler,
		activeHandler:         activeHandler,
		geofences:             geofences,
		requestCounter:        requestCounter,
		requestLatency:        requestLatency,
		activeShifts:          activeShifts,
		geoRejections:         geoRejections,
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
func (h *ShiftHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// StartShift handles POST /shifts/start
func (h *ShiftHandler) StartShift(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req struct {
		Zone      string   `json:"zone"`
		SelfieURI string   `json:"selfie_uri"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	shift, err := h.startHandler.Handle(command.StartShiftCommand{
		UserID:    userID,
		Warehouse: httputil.Warehouse(r),
		Zone:      req.Zone,
		SelfieURI: req.SelfieURI,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOutsideGeofence):
			h.geoRejections.Inc()
			httputil.RespondError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, domain.ErrActiveShiftExists):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrSelfieRequired), errors.Is(err, domain.ErrLocationRequired):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error(r.Context()).Err(err).Uint("user_id", userID).Msg("Failed to start shift")
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to start shift")
		}
		return
	}

	h.activeShifts.Inc()
	httputil.RespondJSON(w, http.StatusCreated, httputil.Response{
		Success: true,
		Message: "Shift started",
		Data:    shift,
	})
}

// EndShift handles POST /shifts/end
func (h *ShiftHandler) EndShift(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	result, err := h.endHandler.Handle(command.EndShiftCommand{UserID: userID})
	if err != nil {
		if errors.Is(err, domain.ErrShiftNotStarted) {
			httputil.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		logger.Error(r.Context()).Err(err).Uint("user_id", userID).Msg("Failed to end shift")
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to end shift")
		return
	}

	h.activeShifts.Dec()
	httputil.RespondData(w, http.StatusOK, result)
}

// GetActiveShift handles GET /shifts/active
func (h *ShiftHandler) GetActiveShift(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	shift, err := h.activeHandler.Handle(userID)
	if err != nil {
		if errors.Is(err, domain.ErrShiftNotStarted) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to load shift")
		return
	}

	httputil.RespondData(w, http.StatusOK, shift)
}

// UpsertGeofence handles PUT /admin/geofences/{warehouse}
func (h *ShiftHandler) UpsertGeofence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude     float64 `json:"latitude"`
		Longitude    float64 `json:"longitude"`
		RadiusMeters float64 `json:"radius_meters"`
		Enabled      bool    `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	setting, err := h.upsertGeofenceHandler.Handle(command.UpsertGeofenceCommand{
		Warehouse:    mux.Vars(r)["warehouse"],
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
		Enabled:      req.Enabled,
	})
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.RespondData(w, http.StatusOK, setting)
}

// GetGeofence handles GET /admin/geofences/{warehouse}
func (h *ShiftHandler) GetGeofence(w http.ResponseWriter, r *http.Request) {
	setting, err := h.geofences.ByWarehouse(mux.Vars(r)["warehouse"])
	if err != nil {
		if errors.Is(err, domain.ErrGeofenceNotConfigured) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to load geofence")
		return
	}
	httputil.RespondData(w, http.StatusOK, setting)
}

// ListGeofences handles GET /admin/geofences
func (h *ShiftHandler) ListGeofences(w http.ResponseWriter, r *http.Request) {
	settings, err := h.geofences.List()
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list geofences")
		return
	}
	httputil.RespondData(w, http.StatusOK, settings)
}

// DeleteGeofence handles DELETE /admin/geofences/{warehouse}
func (h *ShiftHandler) DeleteGeofence(w http.ResponseWriter, r *http.Request) {
	if err := h.deleteGeofenceHandler.Handle(mux.Vars(r)["warehouse"]); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.RespondJSON(w, http.StatusOK, httputil.Response{
		Success: true,
		Message: "Geofence deleted",
	})
}

// RegisterRoutes registers all shift routes. Geofence administration
// is restricted to ops admins.
func (h *ShiftHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/shifts/start", h.metricsMiddleware("/shifts/start",
		httputil.AuthMiddleware(h.StartShift))).Methods("POST")
	router.HandleFunc("/shifts/end", h.metricsMiddleware("/shifts/end",
		httputil.AuthMiddleware(h.EndShift))).Methods("POST")
	router.HandleFunc("/shifts/active", h.metricsMiddleware("/shifts/active",
		httputil.AuthMiddleware(h.GetActiveShift))).Methods("GET")

	router.HandleFunc("/admin/geofences", h.metricsMiddleware("/admin/geofences",
		httputil.RequireRoles(h.ListGeofences, userdomain.RoleOpsAdmin))).Methods("GET")
	router.HandleFunc("/admin/geofences/{warehouse}", h.metricsMiddleware("/admin/geofences/{warehouse}",
		httputil.RequireRoles(h.GetGeofence, userdomain.RoleOpsAdmin))).Methods("GET")
	router.HandleFunc("/admin/geofences/{warehouse}", h.metricsMiddleware("/admin/geofences/{warehouse}",
		httputil.RequireRoles(h.UpsertGeofence, userdomain.RoleOpsAdmin))).Methods("PUT")
	router.HandleFunc("/admin/geofences/{warehouse}", h.metricsMiddleware("/admin/geofences/{warehouse}",
		httputil.RequireRoles(h.DeleteGeofence, userdomain.RoleOpsAdmin))).Methods("DELETE")
}
