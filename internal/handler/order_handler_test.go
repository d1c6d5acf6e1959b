package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sleek-shop/internal/middleware"
	"sleek-shop/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.OrderRequest, caller *model.Identity, idempotencyKey string) (*model.Order, error) {
	args := m.Called(ctx, req, caller, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockOrderService) ListUserOrders(ctx context.Context, caller *model.Identity) ([]model.Order, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, ref string) (*model.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetUserOrder(ctx context.Context, caller *model.Identity, ref string) (*model.Order, error) {
	args := m.Called(ctx, caller, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id string, status string) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) UpdatePaymentStatus(ctx context.Context, id string, paymentStatus string) (*model.Order, error) {
	args := m.Called(ctx, id, paymentStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Stats(ctx context.Context) (*model.OrderStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderStats), args.Error(1)
}

// withURLParams attaches chi route parameters to req.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// decodeEnvelope decodes the response body, leaving data as raw JSON.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (model.Envelope, json.RawMessage) {
	t.Helper()
	var body struct {
		model.Envelope
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Envelope, body.Data
}

func testOrder() *model.Order {
	return &model.Order{
		ID:            uuid.MustParse("7b4c3f0e-5d1a-4c3e-9a51-2f7c8e6b9d10"),
		OrderNumber:   "ORD-1700000000000-7b4c3f",
		CustomerName:  "Nadia Rahman",
		Subtotal:      decimal.RequireFromString("45.99"),
		ShippingCost:  decimal.Zero,
		Tax:           decimal.RequireFromString("3.68"),
		Total:         decimal.RequireFromString("49.67"),
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
		Items:         []model.OrderItem{},
	}
}

func TestOrderHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name            string
		requestBody     any
		identity        *model.Identity
		idempotencyKey  string
		mockReturn      *model.Order
		mockError       error
		expectedStatus  int
		expectedMessage string
		expectService   bool
	}{
		{
			name: "Success",
			requestBody: &model.OrderRequest{
				Items:        []model.OrderItemRequest{{ProductID: 1, Quantity: 1}},
				CustomerName: "Nadia Rahman",
			},
			mockReturn:      testOrder(),
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Success",
			expectService:   true,
		},
		{
			name:            "Signed-in caller with idempotency key",
			requestBody:     &model.OrderRequest{Items: []model.OrderItemRequest{{ProductID: 1, Quantity: 1}}},
			identity:        &model.Identity{ID: 7, Role: model.RoleCustomer},
			idempotencyKey:  "abc-123",
			mockReturn:      testOrder(),
			expectedStatus:  http.StatusCreated,
			expectedMessage: "Success",
			expectService:   true,
		},
		{
			name:            "Validation error",
			requestBody:     &model.OrderRequest{},
			mockError:       model.ErrEmptyOrder,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Order must contain at least one item",
			expectService:   true,
		},
		{
			name:            "Product not found",
			requestBody:     &model.OrderRequest{Items: []model.OrderItemRequest{{ProductID: 999, Quantity: 1}}},
			mockError:       model.ErrProductNotFound,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "One or more products not found",
			expectService:   true,
		},
		{
			name:            "Duplicate in flight",
			requestBody:     &model.OrderRequest{Items: []model.OrderItemRequest{{ProductID: 1, Quantity: 1}}},
			idempotencyKey:  "abc-123",
			mockError:       model.ErrRequestInFlight,
			expectedStatus:  http.StatusConflict,
			expectedMessage: model.ErrRequestInFlight.Message,
			expectService:   true,
		},
		{
			name:            "Invalid JSON",
			requestBody:     "invalid json",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid request body",
			expectService:   false,
		},
		{
			name:            "Service internal error is not exposed",
			requestBody:     &model.OrderRequest{Items: []model.OrderItemRequest{{ProductID: 1, Quantity: 1}}},
			mockError:       errors.New("failed to create order: database connection failed"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
			expectService:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectService {
				mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderRequest"), tt.identity, tt.idempotencyKey).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.idempotencyKey != "" {
				req.Header.Set(IdempotencyHeader, tt.idempotencyKey)
			}
			if tt.identity != nil {
				req = req.WithContext(middleware.WithIdentity(req.Context(), tt.identity))
			}
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			env, data := decodeEnvelope(t, w)
			assert.Equal(t, tt.expectedMessage, env.Message)
			assert.Equal(t, tt.mockError == nil && tt.expectService, env.Success)
			if env.Success {
				var order model.Order
				require.NoError(t, json.Unmarshal(data, &order))
				assert.Equal(t, "ORD-1700000000000-7b4c3f", order.OrderNumber)
				assert.Equal(t, "49.67", order.Total.StringFixed(2))
			} else {
				assert.Equal(t, tt.expectedMessage, env.Error)
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	page := &model.OrderPage{
		Orders:     []model.Order{*testOrder()},
		Pagination: model.NewPagination(2, 5, 6),
	}

	tests := []struct {
		name           string
		query          string
		expectedFilter *model.OrderFilter
		expectedStatus int
	}{
		{
			name:           "Defaults",
			query:          "",
			expectedFilter: &model.OrderFilter{Page: 1, Limit: 20},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "All parameters",
			query:          "?page=2&limit=5&status=shipped&search=nadia",
			expectedFilter: &model.OrderFilter{Page: 2, Limit: 5, Status: "shipped", Search: "nadia"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid page",
			query:          "?page=two",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid limit",
			query:          "?limit=-",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectedFilter != nil {
				mockService.On("ListOrders", mock.Anything, *tt.expectedFilter).Return(page, nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.List(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedFilter != nil {
				_, data := decodeEnvelope(t, w)
				var got model.OrderPage
				require.NoError(t, json.Unmarshal(data, &got))
				assert.Len(t, got.Orders, 1)
				assert.Equal(t, 2, got.Pagination.TotalPages)
			}
			mockService.AssertExpectations(t)
		})
	}

	t.Run("Invalid status filter", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		_, statusErr := model.ParseFulfillmentStatus("lost")
		mockService.On("ListOrders", mock.Anything, mock.Anything).Return(nil, statusErr)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=lost", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid status")
	})
}

func TestOrderHandler_ListMine(t *testing.T) {
	logger := zerolog.Nop()
	caller := &model.Identity{ID: 7, Role: model.RoleCustomer}

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, logger)

	mockService.On("ListUserOrders", mock.Anything, caller).Return([]model.Order{*testOrder()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/user", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), caller))
	w := httptest.NewRecorder()

	handler.ListMine(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	_, data := decodeEnvelope(t, w)
	var orders []model.Order
	require.NoError(t, json.Unmarshal(data, &orders))
	assert.Len(t, orders, 1)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_Get(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		ref            string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success by ID",
			ref:            "7b4c3f0e-5d1a-4c3e-9a51-2f7c8e6b9d10",
			mockReturn:     testOrder(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Success by order number",
			ref:            "ORD-1700000000000-7b4c3f",
			mockReturn:     testOrder(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Order not found",
			ref:            "ORD-missing",
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Service error",
			ref:            "ORD-1",
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			mockService.On("GetOrder", mock.Anything, tt.ref).Return(tt.mockReturn, tt.mockError)

			req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+tt.ref, nil), "id", tt.ref)
			w := httptest.NewRecorder()

			handler.Get(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetMine(t *testing.T) {
	logger := zerolog.Nop()
	caller := &model.Identity{ID: 8, Role: model.RoleCustomer}

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, logger)

	mockService.On("GetUserOrder", mock.Anything, caller, "ORD-OTHER").Return(nil, model.ErrOrderNotFound)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/orders/user/ORD-OTHER", nil), "id", "ORD-OTHER")
	req = req.WithContext(middleware.WithIdentity(req.Context(), caller))
	w := httptest.NewRecorder()

	handler.GetMine(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env, _ := decodeEnvelope(t, w)
	assert.Equal(t, "Order not found", env.Message)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	logger := zerolog.Nop()
	id := "7b4c3f0e-5d1a-4c3e-9a51-2f7c8e6b9d10"

	_, invalidStatus := model.ParseFulfillmentStatus("delivered")

	tests := []struct {
		name           string
		body           string
		expectService  bool
		status         string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"status":"shipped"}`,
			expectService:  true,
			status:         "shipped",
			mockReturn:     testOrder(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid status",
			body:           `{"status":"delivered"}`,
			expectService:  true,
			status:         "delivered",
			mockError:      invalidStatus,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown order",
			body:           `{"status":"shipped"}`,
			expectService:  true,
			status:         "shipped",
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Malformed body",
			body:           `{"status":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("UpdateStatus", mock.Anything, id, tt.status).Return(tt.mockReturn, tt.mockError)
			}

			req := withURLParams(httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+id+"/status", bytes.NewBufferString(tt.body)), "id", id)
			w := httptest.NewRecorder()

			handler.UpdateStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_UpdatePaymentStatus(t *testing.T) {
	logger := zerolog.Nop()
	id := "7b4c3f0e-5d1a-4c3e-9a51-2f7c8e6b9d10"

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, logger)

	paid := testOrder()
	paid.PaymentStatus = model.PaymentPaid
	paid.Status = model.StatusProcessing
	mockService.On("UpdatePaymentStatus", mock.Anything, id, "paid").Return(paid, nil)

	req := withURLParams(httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+id+"/payment-status", bytes.NewBufferString(`{"paymentStatus":"paid"}`)), "id", id)
	w := httptest.NewRecorder()

	handler.UpdatePaymentStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	_, data := decodeEnvelope(t, w)
	var got model.Order
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, model.StatusProcessing, got.Status)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_Stats(t *testing.T) {
	logger := zerolog.Nop()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, logger)

	mockService.On("Stats", mock.Anything).Return(&model.OrderStats{
		TotalOrders:     3,
		CompletedOrders: 1,
		PendingOrders:   2,
		TotalRevenue:    decimal.RequireFromString("99.34"),
	}, nil)

	w := httptest.NewRecorder()
	handler.Stats(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"success":true,"message":"Success","data":{"totalOrders":3,"completedOrders":1,"pendingOrders":2,"totalRevenue":"99.34"}}`,
		w.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{model.ErrCodeValidation, http.StatusBadRequest},
		{model.ErrCodeInvalidStatus, http.StatusBadRequest},
		{model.ErrCodeUnauthorised, http.StatusUnauthorized},
		{model.ErrCodeForbidden, http.StatusForbidden},
		{model.ErrCodeNotFound, http.StatusNotFound},
		{model.ErrCodeDuplicateRequest, http.StatusConflict},
		{model.ErrCodeInternalError, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.code))
		})
	}
}
