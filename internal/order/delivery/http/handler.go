package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/supplycore/fulfillment/internal/order/domain"
	"github.com/supplycore/fulfillment/internal/order/usecase/command"
	"github.com/supplycore/fulfillment/internal/order/usecase/query"
	"github.com/supplycore/fulfillment/pkg/logger"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	createHandler     *command.CreateOrderHandler
	transitionHandler *command.TransitionOrderHandler
	invoiceHandler    *command.GenerateInvoiceHandler

	getHandler   *query.GetOrderHandler
	listHandler  *query.ListOrdersHandler
	auditHandler *query.GetAuditTrailHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewOrderHandler creates a new order handler with Prometheus metrics
func NewOrderHandler(
	createHandler *command.CreateOrderHandler,
	transitionHandler *command.TransitionOrderHandler,
	invoiceHandler *command.GenerateInvoiceHandler,
	getHandler *query.GetOrderHandler,
	listHandler *query.ListOrdersHandler,
	auditHandler *query.GetAuditTrailHandler,
) *OrderHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_service_requests_total",
			Help: "Total number of requests to the order endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_service_request_duration_seconds",
			Help:    "Latency of order endpoint requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &OrderHandler{
		createHandler:     createHandler,
		transitionHandler: transitionHandler,
		invoiceHandler:    invoiceHandler,
		getHandler:        getHandler,
		listHandler:       listHandler,
		auditHandler:      auditHandler,
		requestCounter:    requestCounter,
		requestLatency:    requestLatency,
	}
}

// Response is the standard JSON envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func (h *OrderHandler) observe(method, endpoint string, status int, start time.Time) {
	h.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	h.requestLatency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

// writeDomainError maps domain errors onto HTTP status codes and the
// machine-readable code field clients branch on.
func writeDomainError(w http.ResponseWriter, err error) int {
	var insufficient *domain.InsufficientInventoryError

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Code:    "not_found",
			Error:   "Order not found",
		})
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvoiceNotFound):
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Code:    "not_found",
			Error:   "Invoice not found",
		})
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Code:    "invalid_transition",
			Error:   err.Error(),
		})
		return http.StatusConflict
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Code:    "insufficient_inventory",
			Error:   err.Error(),
			Data: map[string]interface{}{
				"product_ids": insufficient.ProductIDs,
			},
		})
		return http.StatusConflict
	case errors.Is(err, domain.ErrBusy):
		respondJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Code:    "busy",
			Error:   "Order is busy, retry later",
		})
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrEmptyOrder), errors.Is(err, domain.ErrInvalidShipment):
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   err.Error(),
		})
		return http.StatusBadRequest
	default:
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Code:    "internal",
			Error:   "Internal server error",
		})
		return http.StatusInternalServerError
	}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		BuyerID  uint `json:"buyer_id"`
		SellerID uint `json:"seller_id"`
		Lines    []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"lines"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe("POST", "/api/orders", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.CreateOrderCommand{
		BuyerID:  req.BuyerID,
		SellerID: req.SellerID,
	}
	for _, l := range req.Lines {
		cmd.Lines = append(cmd.Lines, command.CreateOrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}

	order, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create order")
		h.observe("POST", "/api/orders", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   err.Error(),
		})
		return
	}

	logger.Info(r.Context()).
		Uint("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Msg("Order created")

	h.observe("POST", "/api/orders", http.StatusCreated, start)
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Order created successfully",
		Data:    order,
	})
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r, "id")
	if !ok {
		h.observe("GET", "/api/orders/{id}", http.StatusBadRequest, start)
		return
	}

	order, err := h.getHandler.Handle(id)
	if err != nil {
		status := writeDomainError(w, err)
		h.observe("GET", "/api/orders/{id}", status, start)
		return
	}

	h.observe("GET", "/api/orders/{id}", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    order,
	})
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := query.ListOrdersQuery{}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	if v := r.URL.Query().Get("buyer_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			buyerID := uint(id)
			q.BuyerID = &buyerID
		}
	}
	if v := r.URL.Query().Get("seller_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			sellerID := uint(id)
			q.SellerID = &sellerID
		}
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.OrderStatus(v)
		q.Status = &status
	}

	orders, err := h.listHandler.Handle(q)
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list orders")
		h.observe("GET", "/api/orders", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   err.Error(),
		})
		return
	}

	h.observe("GET", "/api/orders", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"orders": orders,
			"count":  len(orders),
		},
	})
}

// TransitionOrder handles POST /api/orders/{id}/status
func (h *OrderHandler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r, "id")
	if !ok {
		h.observe("POST", "/api/orders/{id}/status", http.StatusBadRequest, start)
		return
	}

	var req struct {
		Status    string `json:"status"`
		Note      string `json:"notes"`
		Shipments []struct {
			LineNo            int        `json:"line_no"`
			Quantity          int        `json:"quantity"`
			ExpectedRestockAt *time.Time `json:"expected_restock_at"`
		} `json:"shipments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe("POST", "/api/orders/{id}/status", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.TransitionOrderCommand{
		OrderID: id,
		Target:  domain.OrderStatus(req.Status),
		Actor:   actorFrom(r),
		Note:    req.Note,
	}
	for _, s := range req.Shipments {
		cmd.Shipments = append(cmd.Shipments, command.LineShipment{
			LineNo:            s.LineNo,
			Quantity:          s.Quantity,
			ExpectedRestockAt: s.ExpectedRestockAt,
		})
	}

	order, err := h.transitionHandler.Handle(r.Context(), cmd)
	if err != nil {
		logger.Warn(r.Context()).
			Err(err).
			Uint("order_id", id).
			Str("target", req.Status).
			Msg("Transition rejected")
		status := writeDomainError(w, err)
		h.observe("POST", "/api/orders/{id}/status", status, start)
		return
	}

	logger.Info(r.Context()).
		Uint("order_id", order.ID).
		Str("status", string(order.Status)).
		Msg("Order transitioned")

	h.observe("POST", "/api/orders/{id}/status", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Order status updated",
		Data:    order,
	})
}

// GenerateInvoice handles POST /api/orders/{id}/invoice
func (h *OrderHandler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r, "id")
	if !ok {
		h.observe("POST", "/api/orders/{id}/invoice", http.StatusBadRequest, start)
		return
	}

	invoice, err := h.invoiceHandler.Handle(r.Context(), id)
	if err != nil {
		logger.Error(r.Context()).Err(err).Uint("order_id", id).Msg("Invoice generation failed")
		status := writeDomainError(w, err)
		h.observe("POST", "/api/orders/{id}/invoice", status, start)
		return
	}

	h.observe("POST", "/api/orders/{id}/invoice", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Invoice ready",
		Data:    invoice,
	})
}

// GetAuditTrail handles GET /api/orders/{id}/audit
func (h *OrderHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r, "id")
	if !ok {
		h.observe("GET", "/api/orders/{id}/audit", http.StatusBadRequest, start)
		return
	}

	entries, err := h.auditHandler.Handle(id)
	if err != nil {
		status := writeDomainError(w, err)
		h.observe("GET", "/api/orders/{id}/audit", status, start)
		return
	}

	h.observe("GET", "/api/orders/{id}/audit", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"order_id": id,
			"entries":  entries,
		},
	})
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/orders", h.ListOrders).Methods("GET")
	router.HandleFunc("/api/orders", h.CreateOrder).Methods("POST")
	router.HandleFunc("/api/orders/{id:[0-9]+}", h.GetOrder).Methods("GET")
	router.HandleFunc("/api/orders/{id:[0-9]+}/status", h.TransitionOrder).Methods("POST")
	router.HandleFunc("/api/orders/{id:[0-9]+}/invoice", h.GenerateInvoice).Methods("POST")
	router.HandleFunc("/api/orders/{id:[0-9]+}/audit", h.GetAuditTrail).Methods("GET")
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars[name], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "Invalid order ID",
		})
		return 0, false
	}
	return uint(id), true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
