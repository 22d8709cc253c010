package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateOrder godoc
// @Summary Create a new order
// @Description Place an order with one or more lines; unit prices are snapshotted from the catalog
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body object{buyer_id=int,seller_id=int,lines=array} true "Order data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Router /api/orders [post]
func (h *OrderHandler) CreateOrderDoc() {}

// ListOrders godoc
// @Summary List orders
// @Description Get orders filtered by buyer, seller or status, with pagination
// @Tags Orders
// @Produce json
// @Param buyer_id query int false "Buyer filter"
// @Param seller_id query int false "Seller filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=object{orders=array,count=int}}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Router /api/orders [get]
func (h *OrderHandler) ListOrdersDoc() {}

// GetOrder godoc
// @Summary Get order by ID
// @Description Get an order with its lines and shipment bookkeeping
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/orders/{id} [get]
func (h *OrderHandler) GetOrderDoc() {}

// TransitionOrder godoc
// @Summary Transition order status
// @Description Move the order through its lifecycle; dispatch accepts per-line shipment quantities
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body object{status=string,note=string,shipments=array} true "Transition request"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Failure 409 {object} object{success=bool,error=string,code=string}
// @Failure 503 {object} object{success=bool,error=string,code=string}
// @Router /api/orders/{id}/status [post]
func (h *OrderHandler) TransitionOrderDoc() {}

// GenerateInvoice godoc
// @Summary Generate the order's invoice
// @Description Returns the invoice for a delivered order, creating it on first call
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Failure 409 {object} object{success=bool,error=string,code=string}
// @Router /api/orders/{id}/invoice [post]
func (h *OrderHandler) GenerateInvoiceDoc() {}

// GetAuditTrail godoc
// @Summary Get order audit trail
// @Description List every status transition recorded for the order, oldest first
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} object{success=bool,data=object{order_id=int,entries=array}}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/orders/{id}/audit [get]
func (h *OrderHandler) GetAuditTrailDoc() {}
