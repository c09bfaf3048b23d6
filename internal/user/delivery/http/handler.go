package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pickerpack/fulfillment/internal/user/domain"
	"github.com/pickerpack/fulfillment/internal/user/usecase/command"
	"github.com/pickerpack/fulfillment/internal/user/usecase/query"
	"github.com/pickerpack/fulfillment/pkg/httputil"
	"github.com/pickerpack/fulfillment/pkg/logger"
)

// UserHandler handles HTTP requests for worker accounts.
type UserHandler struct {
	signupHandler *command.SignupHandler
	loginHandler  *command.LoginHandler
	reviewHandler *command.ReviewSignupHandler

	listHandler    *query.ListUsersHandler
	pendingHandler *query.PendingApprovalsHandler

	repo           domain.UserRepository
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	pendingSignups prometheus.Gauge
}

// NewUserHandler creates a new user handler.
func NewUserHandler(repo domain.UserRepository) *UserHandler {
	return NewUserHandlerWithDI(
		command.NewSignupHandler(repo),
		command.NewLoginHandler(repo),
		command.NewReviewSignupHandler(repo),
		query.NewListUsersHandler(repo),
		query.NewPendingApprovalsHandler(repo),
		repo,
	)
}

// NewUserHandlerWithDI creates a new user handler from pre-built
// handlers. Used by Wire.
func NewUserHandlerWithDI(
	signupHandler *command.SignupHandler,
	loginHandler *command.LoginHandler,
	reviewHandler *command.ReviewSignupHandler,
	listHandler *query.ListUsersHandler,
	pendingHandler *query.PendingApprovalsHandler,
	repo domain.UserRepository,
) *UserHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_service_requests_total",
			Help: "Total number of requests to user endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_service_request_duration_seconds",
			Help:    "Duration of user endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	pendingSignups := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "user_service_pending_signups",
			Help: "Number of signups awaiting review",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(pendingSignups)

	return &UserHandler{
		signupHandler:  signupHandler,
		loginHandler:   loginHandler,
		reviewHandler:  reviewHandler,
		listHandler:    listHandler,
		pendingHandler: pendingHandler,
		repo:           repo,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		pendingSignups: pendingSignups,
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
func (h *UserHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// Signup handles POST /auth/signup
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName  string `json:"full_name"`
		Phone     string `json:"phone"`
		Warehouse string `json:"warehouse"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.signupHandler.Handle(command.SignupCommand{
		FullName:  req.FullName,
		Phone:     req.Phone,
		Warehouse: req.Warehouse,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPhoneTaken) {
			httputil.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.updatePendingMetric()
	httputil.RespondJSON(w, http.StatusCreated, httputil.Response{
		Success: true,
		Message: "Signup received, awaiting approval",
		Data:    result,
	})
}

// Login handles POST /auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		PIN   string `json:"pin"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.loginHandler.Handle(command.LoginCommand{
		Phone: req.Phone,
		PIN:   req.PIN,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPendingApproval):
			httputil.RespondError(w, http.StatusForbidden, err.Error())
		default:
			httputil.RespondError(w, http.StatusUnauthorized, err.Error())
		}
		return
	}

	httputil.RespondData(w, http.StatusOK, response)
}

// GetProfile handles GET /users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.UserID(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	user, err := h.repo.FindByID(userID)
	if err != nil {
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	httputil.RespondData(w, http.StatusOK, user)
}

// ListUsers handles GET /admin/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.listHandler.Handle(query.ListUsersQuery{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list users")
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	httputil.RespondData(w, http.StatusOK, users)
}

// PendingApprovals handles GET /admin/approvals
func (h *UserHandler) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	users, err := h.pendingHandler.Handle()
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list pending approvals")
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list pending approvals")
		return
	}

	h.pendingSignups.Set(float64(len(users)))
	httputil.RespondData(w, http.StatusOK, users)
}

// Approve handles POST /admin/approvals/{id}/approve
func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true)
}

// Reject handles POST /admin/approvals/{id}/reject
func (h *UserHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false)
}

func (h *UserHandler) review(w http.ResponseWriter, r *http.Request, approve bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	reviewerID, ok := httputil.UserID(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	user, err := h.reviewHandler.Handle(command.ReviewSignupCommand{
		UserID:     uint(id),
		ReviewerID: reviewerID,
		Approve:    approve,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrAlreadyReviewed):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		default:
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.updatePendingMetric()
	httputil.RespondData(w, http.StatusOK, user)
}

// HealthCheck handles GET /health
func (h *UserHandler) HealthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			httputil.RespondJSON(w, http.StatusServiceUnavailable, httputil.Response{
				Success: false,
				Error:   err.Error(),
				Message: "unhealthy",
			})
			return
		}

		httputil.RespondJSON(w, http.StatusOK, httputil.Response{Success: true, Message: "healthy"})
	}
}

func (h *UserHandler) updatePendingMetric() {
	count, err := h.repo.CountByStatus(domain.StatusPending)
	if err == nil {
		h.pendingSignups.Set(float64(count))
	}
}

// RegisterRoutes registers all user routes. Management routes admit
// supervisor roles only, through the shared role middleware.
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/signup", h.metricsMiddleware("/auth/signup", h.Signup)).Methods("POST")
	router.HandleFunc("/auth/login", h.metricsMiddleware("/auth/login", h.Login)).Methods("POST")

	router.HandleFunc("/users/me", h.metricsMiddleware("/users/me", httputil.AuthMiddleware(h.GetProfile))).Methods("GET")

	manage := []string{domain.RoleASM, domain.RoleStoreManager, domain.RoleOpsAdmin}
	router.HandleFunc("/admin/users", h.metricsMiddleware("/admin/users",
		httputil.RequireRoles(h.ListUsers, manage...))).Methods("GET")
	router.HandleFunc("/admin/approvals", h.metricsMiddleware("/admin/approvals",
		httputil.RequireRoles(h.PendingApprovals, manage...))).Methods("GET")
	router.HandleFunc("/admin/approvals/{id}/approve", h.metricsMiddleware("/admin/approvals/{id}/approve",
		httputil.RequireRoles(h.Approve, manage...))).Methods("POST")
	router.HandleFunc("/admin/approvals/{id}/reject", h.metricsMiddleware("/admin/approvals/{id}/reject",
		httputil.RequireRoles(h.Reject, manage...))).Methods("POST")
}

// RegisterHealthCheck registers the health check endpoint.
func (h *UserHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", h.HealthCheck(db)).Methods("GET")
}
