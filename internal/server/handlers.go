package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/service/inventory"
	"github.com/vladislavdragonenkov/shopcore/internal/service/order"
	"github.com/vladislavdragonenkov/shopcore/internal/service/returns"
)

const defaultListLimit = 50

// Handler связывает HTTP-маршруты с сервисами ядра.
type Handler struct {
	orders  *order.Service
	returns *returns.Service
	ledger  *inventory.Ledger
	store   domain.Store
	logger  *log.Entry
}

// NewHandler создаёт HTTP-handler поверх сервисов ядра.
func NewHandler(orders *order.Service, rets *returns.Service, ledger *inventory.Ledger, store domain.Store, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-handler")
	}
	return &Handler{
		orders:  orders,
		returns: rets,
		ledger:  ledger,
		store:   store,
		logger:  logger,
	}
}

// CreateOrder обрабатывает POST /v1/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_json"})
		return
	}

	items := make([]order.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.ItemRequest{
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	orderID, err := h.orders.CreateOrder(r.Context(), order.CreateOrderRequest{
		CustomerID:        req.CustomerID,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		ShippingMethod:    domain.ShippingMethod(req.ShippingMethod),
		PaymentMethod:     req.PaymentMethod,
		Items:             items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderResponse(created))
}

// GetOrder обрабатывает GET /v1/orders/{orderID}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(o))
}

// UpdateOrderStatus обрабатывает POST /v1/orders/{orderID}/status.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_json"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "status is required", Code: "validation"})
		return
	}

	notify := true
	if req.Notify != nil {
		notify = *req.Notify
	}

	if err := h.orders.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status), notify); err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse(updated))
}

// ListCustomerOrders обрабатывает GET /v1/customers/{customerID}/orders.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	limit := queryLimit(r)

	orders, err := h.orders.ListByCustomer(r.Context(), customerID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, orderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCustomerNotifications обрабатывает GET /v1/customers/{customerID}/notifications.
func (h *Handler) ListCustomerNotifications(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	limit := queryLimit(r)

	notifications, err := h.store.Notifications().ListByCustomer(customerID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp = append(resp, notificationResponse(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateReturn обрабатывает POST /v1/returns.
func (h *Handler) CreateReturn(w http.ResponseWriter, r *http.Request) {
	var req CreateReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_json"})
		return
	}

	// По умолчанию возвращённый товар снова попадает на склад.
	restock := true
	if req.Restock != nil {
		restock = *req.Restock
	}

	returnID, err := h.returns.ProcessReturn(r.Context(), returns.Request{
		OrderID:     req.OrderID,
		ProductID:   req.ProductID,
		Qty:         req.Qty,
		Reason:      req.Reason,
		Restock:     restock,
		RefundMinor: req.RefundMinor,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := h.store.Returns().Get(returnID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, returnResponse(created))
}

// ListOrderReturns обрабатывает GET /v1/orders/{orderID}/returns.
func (h *Handler) ListOrderReturns(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	rets, err := h.returns.ListByOrder(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]ReturnResponse, 0, len(rets))
	for _, ret := range rets {
		resp = append(resp, returnResponse(ret))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListProductAlerts обрабатывает GET /v1/products/{productID}/alerts.
func (h *Handler) ListProductAlerts(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	alerts, err := h.ledger.UnresolvedAlerts(h.store, productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, alertResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return limit
}
