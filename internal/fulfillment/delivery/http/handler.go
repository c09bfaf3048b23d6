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

	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
	"github.com/pickerpack/fulfillment/internal/fulfillment/usecase/command"
	"github.com/pickerpack/fulfillment/internal/fulfillment/usecase/query"
	"github.com/pickerpack/fulfillment/pkg/httputil"
	"github.com/pickerpack/fulfillment/pkg/logger"
)

// ShiftGuard is the clock-in precondition consulted before any
// physical warehouse action.
type ShiftGuard interface {
	IsClockedInAndGeoValid(userID uint) (bool, error)
}

// WorkerDirectory supplies the pool of workers eligible for task
// assignment.
type WorkerDirectory interface {
	FindAll(status string, limit, offset int) ([]userdomain.User, error)
}

// FulfillmentHandler handles HTTP requests for orders and tasks.
type FulfillmentHandler struct {
	createOrderHandler  *command.CreateOrderHandler
	processScanHandler  *command.ProcessScanHandler
	completeTaskHandler *command.CompleteTaskHandler

	listTasksHandler    *query.ListTasksHandler
	getTaskHandler      *query.GetTaskHandler
	pickingQueueHandler *query.PickingQueueHandler
	listOrdersHandler   *query.ListOrdersHandler
	getOrderHandler     *query.GetOrderHandler
	packingQueueHandler *query.PackingQueueHandler

	guard   ShiftGuard
	workers WorkerDirectory

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	ordersCreated  prometheus.Counter
	scansProcessed *prometheus.CounterVec
	tasksCompleted prometheus.Counter
}

// NewFulfillmentHandler creates a new fulfillment handler.
func NewFulfillmentHandler(
	createOrderHandler *command.CreateOrderHandler,
	processScanHandler *command.ProcessScanHandler,
	completeTaskHandler *command.CompleteTaskHandler,
	listTasksHandler *query.ListTasksHandler,
	getTaskHandler *query.GetTaskHandler,
	pickingQueueHandler *query.PickingQueueHandler,
	listOrdersHandler *query.ListOrdersHandler,
	getOrderHandler *query.GetOrderHandler,
	packingQueueHandler *query.PackingQueueHandler,
	guard ShiftGuard,
	workers WorkerDirectory,
) *FulfillmentHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_service_requests_total",
			Help: "Total number of requests to fulfillment endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillment_service_request_duration_seconds",
			Help:    "Duration of fulfillment endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ordersCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_orders_created_total",
			Help: "Orders created with their pick tasks",
		},
	)

	scansProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_scans_total",
			Help: "Barcode scans processed, by outcome",
		},
		[]string{"result"},
	)

	tasksCompleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_tasks_completed_total",
			Help: "Tasks completed by workers",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(ordersCreated)
	prometheus.MustRegister(scansProcessed)
	prometheus.MustRegister(tasksCompleted)

	return &FulfillmentHandler{
		createOrderHandler:  createOrderHandler,
		processScanHandler:  processScanHandler,
		completeTaskHandler: completeTaskHandler,
		listTasksHandler:    listTasksHandler,
		getTaskHandler:      getTaskHandler,
		pickingQueueHandler: pickingQueueHandler,
		listOrdersHandler:   listOrdersHandler,
		getOrderHandler:     getOrderHandler,
		packingQueueHandler: packingQueueHandler,
		guard:               guard,
		workers:             workers,
		requestCounter:      requestCounter,
		requestLatency:      requestLatency,
		ordersCreated:       ordersCreated,
		scansProcessed:      scansProcessed,
		tasksCompleted:      tasksCompleted,
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
func (h *FulfillmentHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// requireActiveShift denies physical warehouse actions unless the
// worker is clocked in inside the geofence. The check sits at the
// route boundary so the command handlers stay precondition-free.
func (h *FulfillmentHandler) requireActiveShift(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := httputil.UserID(r)
		if !ok {
			httputil.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
			return
		}

		allowed, err := h.guard.IsClockedInAndGeoValid(userID)
		if err != nil {
			logger.Error(r.Context()).Err(err).Uint("user_id", userID).Msg("Shift guard check failed")
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to verify shift")
			return
		}
		if !allowed {
			httputil.RespondError(w, http.StatusForbidden, "An active shift inside the warehouse is required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// CreateOrder handles POST /orders
func (h *FulfillmentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderNumber  string `json:"order_number"`
		CustomerName string `json:"customer_name"`
		Warehouse    string `json:"warehouse"`
		Zone         string `json:"zone"`
		Priority     string `json:"priority"`
		AllowPartial bool   `json:"allow_partial"`
		WorkerPool   []uint `json:"worker_pool,omitempty"`
		Items        []struct {
			SKUID    uint   `json:"sku_id"`
			SKUCode  string `json:"sku_code"`
			BinID    uint   `json:"bin_id"`
			BinCode  string `json:"bin_code"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Warehouse == "" {
		req.Warehouse = httputil.Warehouse(r)
	}

	pool := req.WorkerPool
	if len(pool) == 0 {
		var err error
		pool, err = h.eligibleWorkers(req.Warehouse)
		if err != nil {
			logger.Error(r.Context()).Err(err).Msg("Failed to load worker pool")
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to load worker pool")
			return
		}
	}

	cmd := command.CreateOrderCommand{
		OrderNumber:  req.OrderNumber,
		CustomerName: req.CustomerName,
		Warehouse:    req.Warehouse,
		Zone:         req.Zone,
		Priority:     req.Priority,
		WorkerPool:   pool,
		AllowPartial: req.AllowPartial,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, command.OrderItemSpec{
			SKUID:    item.SKUID,
			SKUCode:  item.SKUCode,
			BinID:    item.BinID,
			BinCode:  item.BinCode,
			Quantity: item.Quantity,
		})
	}

	result, err := h.createOrderHandler.Handle(cmd)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrEmptyOrder), errors.Is(err, domain.ErrNoPickersAvailable):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			logger.Error(r.Context()).Err(err).Str("order_number", req.OrderNumber).Msg("Failed to create order")
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.ordersCreated.Inc()
	httputil.RespondJSON(w, http.StatusCreated, httputil.Response{
		Success: true,
		Message: "Order created and assigned",
		Data:    result,
	})
}

// eligibleWorkers returns approved picker ids for a warehouse, in a
// stable order so round-robin rotation is deterministic.
func (h *FulfillmentHandler) eligibleWorkers(warehouse string) ([]uint, error) {
	users, err := h.workers.FindAll(userdomain.StatusApproved, 100, 0)
	if err != nil {
		return nil, err
	}

	var pool []uint
	for i := len(users) - 1; i >= 0; i-- {
		u := users[i]
		if u.Role != userdomain.RolePickerPacker {
			continue
		}
		if warehouse != "" && u.Warehouse != warehouse {
			continue
		}
		pool = append(pool, u.ID)
	}
	return pool, nil
}

// ListOrders handles GET /orders
func (h *FulfillmentHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := httputil.UserID(r)

	orders, err := h.listOrdersHandler.Handle(query.ListOrdersQuery{
		WorkerID: userID,
		Status:   r.URL.Query().Get("status"),
	})
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	httputil.RespondData(w, http.StatusOK, orders)
}

// GetOrder handles GET /orders/{id}
func (h *FulfillmentHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := h.getOrderHandler.Handle(query.GetOrderQuery{OrderID: uint(id)})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to load order")
		return
	}
	httputil.RespondData(w, http.StatusOK, order)
}

// PackingQueue handles GET /orders/packing-queue
func (h *FulfillmentHandler) PackingQueue(w http.ResponseWriter, r *http.Request) {
	userID, _ := httputil.UserID(r)

	orders, err := h.packingQueueHandler.Handle(query.PackingQueueQuery{WorkerID: userID})
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to load packing queue")
		return
	}
	httputil.RespondData(w, http.StatusOK, orders)
}

// ListTasks handles GET /tasks
func (h *FulfillmentHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, _ := httputil.UserID(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.listTasksHandler.Handle(query.ListTasksQuery{
		WorkerID: userID,
		Status:   r.URL.Query().Get("status"),
		Type:     r.URL.Query().Get("type"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}
	httputil.RespondData(w, http.StatusOK, result)
}

// PickingQueue handles GET /tasks/picking-queue
func (h *FulfillmentHandler) PickingQueue(w http.ResponseWriter, r *http.Request) {
	userID, _ := httputil.UserID(r)

	tasks, err := h.pickingQueueHandler.Handle(query.PickingQueueQuery{WorkerID: userID})
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to load picking queue")
		return
	}
	httputil.RespondData(w, http.StatusOK, tasks)
}

// GetTask handles GET /tasks/{id}
func (h *FulfillmentHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := httputil.UserID(r)
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.getTaskHandler.Handle(query.GetTaskQuery{TaskID: uint(id), WorkerID: userID})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to load task")
		return
	}
	httputil.RespondData(w, http.StatusOK, task)
}

// Scan handles POST /tasks/{id}/scan
func (h *FulfillmentHandler) Scan(w http.ResponseWriter, r *http.Request) {
	userID, _ := httputil.UserID(r)
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.processScanHandler.Handle(command.ProcessScanCommand{
		TaskID:   uint(id),
		WorkerID: userID,
		Code:     req.Code,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Error(r.Context()).Err(err).Uint64("task_id", id).Msg("Scan failed")
		httputil.RespondError(w, http.StatusInternalServerError, "Scan failed")
		return
	}

	switch {
	case !result.Matched:
		h.scansProcessed.WithLabelValues("unmatched").Inc()
	case result.Action == "already_scanned":
		h.scansProcessed.WithLabelValues("duplicate").Inc()
	default:
		h.scansProcessed.WithLabelValues("scanned").Inc()
	}

	httputil.RespondData(w, http.StatusOK, result)
}

// CompleteTask handles POST /tasks/{id}/complete
func (h *FulfillmentHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := httputil.UserID(r)
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.completeTaskHandler.Handle(r.Context(), command.CompleteTaskCommand{
		TaskID:   uint(id),
		WorkerID: userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrTaskAlreadyCompleted),
			errors.Is(err, domain.ErrTaskCancelled):
			httputil.RespondError(w, http.StatusConflict, err.Error())
		default:
			logger.Error(r.Context()).Err(err).Uint64("task_id", id).Msg("Failed to complete task")
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to complete task")
		}
		return
	}

	h.tasksCompleted.Inc()
	httputil.RespondJSON(w, http.StatusOK, httputil.Response{
		Success: true,
		Message: "Task completed",
		Data:    task,
	})
}

// RegisterRoutes registers all fulfillment routes. Scanning and task
// completion additionally require an active geofence-validated shift.
func (h *FulfillmentHandler) RegisterRoutes(router *mux.Router) {
	manage := []string{userdomain.RoleASM, userdomain.RoleStoreManager, userdomain.RoleOpsAdmin}

	router.HandleFunc("/orders", h.metricsMiddleware("/orders",
		httputil.RequireRoles(h.CreateOrder, manage...))).Methods("POST")
	router.HandleFunc("/orders", h.metricsMiddleware("/orders",
		httputil.AuthMiddleware(h.ListOrders))).Methods("GET")
	router.HandleFunc("/orders/packing-queue", h.metricsMiddleware("/orders/packing-queue",
		httputil.AuthMiddleware(h.PackingQueue))).Methods("GET")
	router.HandleFunc("/orders/{id}", h.metricsMiddleware("/orders/{id}",
		httputil.AuthMiddleware(h.GetOrder))).Methods("GET")

	router.HandleFunc("/tasks", h.metricsMiddleware("/tasks",
		httputil.AuthMiddleware(h.ListTasks))).Methods("GET")
	router.HandleFunc("/tasks/picking-queue", h.metricsMiddleware("/tasks/picking-queue",
		httputil.AuthMiddleware(h.PickingQueue))).Methods("GET")
	router.HandleFunc("/tasks/{id}", h.metricsMiddleware("/tasks/{id}",
		httputil.AuthMiddleware(h.GetTask))).Methods("GET")
	router.HandleFunc("/tasks/{id}/scan", h.metricsMiddleware("/tasks/{id}/scan",
		httputil.AuthMiddleware(h.requireActiveShift(h.Scan)))).Methods("POST")
	router.HandleFunc("/tasks/{id}/complete", h.metricsMiddleware("/tasks/{id}/complete",
		httputil.AuthMiddleware(h.requireActiveShift(h.CompleteTask)))).Methods("POST")
}
