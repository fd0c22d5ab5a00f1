package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/health"
	"github.com/vladislavdragonenkov/shopcore/internal/server"
	"github.com/vladislavdragonenkov/shopcore/internal/service/inventory"
	"github.com/vladislavdragonenkov/shopcore/internal/service/order"
	"github.com/vladislavdragonenkov/shopcore/internal/service/returns"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
)

func newTestRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	store.SeedCustomer(domain.Customer{ID: "customer-1", Name: "Test", Email: "t@example.com"})
	store.SeedAddress(domain.Address{ID: "addr-ship", CustomerID: "customer-1"})
	store.SeedAddress(domain.Address{ID: "addr-bill", CustomerID: "customer-1"})
	store.SeedProduct(domain.Product{ID: "prod-1", SKU: "SKU-1", PriceMinor: 1000, Active: true})
	store.SeedInventory(domain.InventoryRecord{ProductID: "prod-1", QuantityInStock: 10, ReorderThreshold: 2})

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	entry := logger.WithField("component", "test")

	ledger := inventory.NewLedgerWithoutMetrics(entry)
	orderSvc := order.NewServiceWithoutMetrics(store, ledger, entry)
	returnSvc := returns.NewServiceWithoutMetrics(store, ledger, entry)

	handler := server.NewHandler(orderSvc, returnSvc, ledger, store, entry)
	srv := server.NewServer(":0", handler, health.NewHandler("test"))
	return srv.Router(), store
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createOrderBody(qty int32) server.CreateOrderRequest {
	return server.CreateOrderRequest{
		CustomerID:        "customer-1",
		ShippingAddressID: "addr-ship",
		BillingAddressID:  "addr-bill",
		ShippingMethod:    "standard",
		PaymentMethod:     "card",
		Items: []server.OrderItemRequest{
			{ProductID: "prod-1", Qty: qty, UnitPriceMinor: 1000},
		},
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/orders", createOrderBody(2))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp server.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.Equal(t, "pending", resp.Status)
	require.Equal(t, int64(2000), resp.SubtotalMinor)
	require.Equal(t, int64(599), resp.ShippingMinor)
	require.Equal(t, int64(160), resp.TaxMinor)
	require.Equal(t, int64(2759), resp.TotalMinor)
	require.Len(t, resp.Items, 1)
}

func TestCreateOrderEndpoint_InsufficientStock(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/orders", createOrderBody(11))
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "insufficient_inventory", resp.Code)
}

func TestCreateOrderEndpoint_BadJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderEndpoint_ValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	body := createOrderBody(2)
	body.CustomerID = ""
	rec := doJSON(t, router, http.MethodPost, "/v1/orders", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "validation", resp.Code)
}

func TestGetOrderEndpoint_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/orders/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/v1/orders", createOrderBody(1))
	require.Equal(t, http.StatusCreated, created.Code)
	var o server.OrderResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &o))

	rec := doJSON(t, router, http.MethodPost, "/v1/orders/"+o.ID+"/status",
		server.UpdateStatusRequest{Status: "processing"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated server.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "processing", updated.Status)

	// Уведомление по умолчанию создаётся.
	notifications := doJSON(t, router, http.MethodGet, "/v1/customers/customer-1/notifications", nil)
	require.Equal(t, http.StatusOK, notifications.Code)
	var list []server.NotificationResponse
	require.NoError(t, json.Unmarshal(notifications.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "order_status", list[0].Type)
}

func TestUpdateStatusEndpoint_InvalidTransition(t *testing.T) {
	router, _ := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/v1/orders", createOrderBody(1))
	var o server.OrderResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &o))

	rec := doJSON(t, router, http.MethodPost, "/v1/orders/"+o.ID+"/status",
		server.UpdateStatusRequest{Status: "delivered"})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "invalid_transition", resp.Code)
}

func TestCreateReturnEndpoint(t *testing.T) {
	router, store := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/v1/orders", createOrderBody(3))
	var o server.OrderResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &o))

	rec := doJSON(t, router, http.MethodPost, "/v1/returns", server.CreateReturnRequest{
		OrderID:   o.ID,
		ProductID: "prod-1",
		Qty:       1,
		Reason:    "defective",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var ret server.ReturnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	require.Equal(t, "processed", ret.Status)
	require.True(t, ret.Restocked)
	require.Equal(t, int64(1000), ret.RefundMinor)

	// Restock по умолчанию возвращает единицу на склад: 10 - 3 + 1.
	inv, err := store.Inventory().Get("prod-1")
	require.NoError(t, err)
	require.Equal(t, int32(8), inv.QuantityInStock)

	list := doJSON(t, router, http.MethodGet, "/v1/orders/"+o.ID+"/returns", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var rets []server.ReturnResponse
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &rets))
	require.Len(t, rets, 1)
}

func TestCreateReturnEndpoint_ExcessiveQty(t *testing.T) {
	router, _ := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/v1/orders", createOrderBody(2))
	var o server.OrderResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &o))

	rec := doJSON(t, router, http.MethodPost, "/v1/returns", server.CreateReturnRequest{
		OrderID:   o.ID,
		ProductID: "prod-1",
		Qty:       5,
		Reason:    "changed mind",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "excessive_return_quantity", resp.Code)
}

func TestLowStockAlertEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	// Остаток 10, порог 2: заказ на 9 опускает остаток до 1 и поднимает алерт.
	created := doJSON(t, router, http.MethodPost, "/v1/orders", createOrderBody(9))
	require.Equal(t, http.StatusCreated, created.Code)

	rec := doJSON(t, router, http.MethodGet, "/v1/products/prod-1/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []server.AlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	require.Equal(t, "low_stock", alerts[0].AlertType)
	require.False(t, alerts[0].Resolved)
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
