package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
	"github.com/supplycore/fulfillment/internal/inventory/usecase/command"
	"github.com/supplycore/fulfillment/internal/inventory/usecase/query"
	"github.com/supplycore/fulfillment/pkg/logger"
)

// InventoryHandler handles HTTP requests for the stock ledger
type InventoryHandler struct {
	createHandler     *command.CreateRecordHandler
	restockHandler    *command.RestockHandler
	deactivateHandler *command.DeactivateRecordHandler

	getHandler  *query.GetRecordHandler
	listHandler *query.ListRecordsHandler

	repo domain.InventoryRepository

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewInventoryHandler creates a new inventory handler with Prometheus metrics
func NewInventoryHandler(
	createHandler *command.CreateRecordHandler,
	restockHandler *command.RestockHandler,
	deactivateHandler *command.DeactivateRecordHandler,
	getHandler *query.GetRecordHandler,
	listHandler *query.ListRecordsHandler,
	repo domain.InventoryRepository,
) *InventoryHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_requests_total",
			Help: "Total number of requests to the inventory endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_service_request_duration_seconds",
			Help:    "Latency of inventory endpoint requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &InventoryHandler{
		createHandler:     createHandler,
		restockHandler:    restockHandler,
		deactivateHandler: deactivateHandler,
		getHandler:        getHandler,
		listHandler:       listHandler,
		repo:              repo,
		requestCounter:    requestCounter,
		requestLatency:    requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func (h *InventoryHandler) observe(method, endpoint string, status int, start time.Time) {
	h.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	h.requestLatency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

// CreateRecord handles POST /api/inventory
func (h *InventoryHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		ProductID      uint `json:"product_id"`
		HolderID       uint `json:"holder_id"`
		QuantityOnHand int  `json:"quantity_on_hand"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe("POST", "/api/inventory", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "Invalid request body",
		})
		return
	}

	record, err := h.createHandler.Handle(command.CreateRecordCommand{
		ProductID:      req.ProductID,
		HolderID:       req.HolderID,
		QuantityOnHand: req.QuantityOnHand,
	})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to create inventory record")
		h.observe("POST", "/api/inventory", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   err.Error(),
		})
		return
	}

	h.observe("POST", "/api/inventory", http.StatusCreated, start)
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Inventory record created successfully",
		Data:    record,
	})
}

// GetRecord handles GET /api/inventory/{id}
func (h *InventoryHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.observe("GET", "/api/inventory/{id}", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "Invalid inventory record ID",
		})
		return
	}

	record, err := h.getHandler.Handle(query.GetRecordQuery{RecordID: uint(id)})
	if err != nil {
		h.observe("GET", "/api/inventory/{id}", http.StatusNotFound, start)
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Code:    "not_found",
			Error:   "Inventory record not found",
		})
		return
	}

	h.observe("GET", "/api/inventory/{id}", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}

// GetAvailability handles GET /api/inventory/availability?product_id=&holder_id=
func (h *InventoryHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	productID, err1 := strconv.ParseUint(r.URL.Query().Get("product_id"), 10, 32)
	holderID, err2 := strconv.ParseUint(r.URL.Query().Get("holder_id"), 10, 32)
	if err1 != nil || err2 != nil {
		h.observe("GET", "/api/inventory/availability", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "product_id and holder_id are required",
		})
		return
	}

	record, err := h.repo.FindByProductAndHolder(uint(productID), uint(holderID))
	if err != nil {
		h.observe("GET", "/api/inventory/availability", http.StatusNotFound, start)
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Code:    "not_found",
			Error:   "Inventory record not found",
		})
		return
	}

	h.observe("GET", "/api/inventory/availability", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"product_id":         record.ProductID,
			"holder_id":          record.HolderID,
			"quantity_on_hand":   record.QuantityOnHand,
			"quantity_reserved":  record.QuantityReserved,
			"quantity_available": record.Available(),
		},
	})
}

// ListRecords handles GET /api/inventory
func (h *InventoryHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := h.listHandler.Handle(query.ListRecordsQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list inventory records")
		h.observe("GET", "/api/inventory", http.StatusInternalServerError, start)
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Code:    "internal",
			Error:   "Failed to list inventory records",
		})
		return
	}

	h.observe("GET", "/api/inventory", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// Restock handles POST /api/inventory/{product_id}/restock
func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vars := mux.Vars(r)
	productID, err := strconv.ParseUint(vars["product_id"], 10, 32)
	if err != nil {
		h.observe("POST", "/api/inventory/{product_id}/restock", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "Invalid product ID",
		})
		return
	}

	var req struct {
		HolderID uint `json:"holder_id"`
		Quantity int  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe("POST", "/api/inventory/{product_id}/restock", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "Invalid request body",
		})
		return
	}

	record, err := h.restockHandler.Handle(command.RestockCommand{
		ProductID: uint(productID),
		HolderID:  req.HolderID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		status := http.StatusBadRequest
		code := "bad_request"
		if errors.Is(err, domain.ErrRecordNotFound) {
			status = http.StatusNotFound
			code = "not_found"
		}
		logger.Error(r.Context()).Err(err).Uint64("product_id", productID).Msg("Failed to restock")
		h.observe("POST", "/api/inventory/{product_id}/restock", status, start)
		respondJSON(w, status, Response{
			Success: false,
			Code:    code,
			Error:   err.Error(),
		})
		return
	}

	h.observe("POST", "/api/inventory/{product_id}/restock", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock added successfully",
		Data:    record,
	})
}

// DeactivateRecord handles DELETE /api/inventory/{id}
func (h *InventoryHandler) DeactivateRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.observe("DELETE", "/api/inventory/{id}", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Code:    "bad_request",
			Error:   "Invalid inventory record ID",
		})
		return
	}

	if err := h.deactivateHandler.Handle(command.DeactivateRecordCommand{RecordID: uint(id)}); err != nil {
		status := http.StatusBadRequest
		code := "bad_request"
		if errors.Is(err, domain.ErrRecordNotFound) {
			status = http.StatusNotFound
			code = "not_found"
		}
		h.observe("DELETE", "/api/inventory/{id}", status, start)
		respondJSON(w, status, Response{
			Success: false,
			Code:    code,
			Error:   err.Error(),
		})
		return
	}

	h.observe("DELETE", "/api/inventory/{id}", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Inventory record deactivated",
	})
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/inventory", h.ListRecords).Methods("GET")
	router.HandleFunc("/api/inventory", h.CreateRecord).Methods("POST")
	router.HandleFunc("/api/inventory/availability", h.GetAvailability).Methods("GET")
	router.HandleFunc("/api/inventory/{id:[0-9]+}", h.GetRecord).Methods("GET")
	router.HandleFunc("/api/inventory/{id:[0-9]+}", h.DeactivateRecord).Methods("DELETE")
	router.HandleFunc("/api/inventory/{product_id:[0-9]+}/restock", h.Restock).Methods("POST")
}

// RegisterHealthCheck registers health check endpoint
func (h *InventoryHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Fulfillment service is healthy",
		})
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
