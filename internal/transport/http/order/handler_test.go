package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderbook/internal/entity"
	"github.com/Additional-Code/orderbook/pkg/errorbank"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) List(ctx context.Context) ([]entity.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]entity.Order)
	return orders, args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id int64) (*entity.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*entity.Order)
	return order, args.Error(1)
}

func (m *mockService) GetByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	args := m.Called(ctx, orderNumber)
	order, _ := args.Get(0).(*entity.Order)
	return order, args.Error(1)
}

func (m *mockService) GetOrderWithItems(ctx context.Context, orderNumber string) (*entity.Order, error) {
	args := m.Called(ctx, orderNumber)
	order, _ := args.Get(0).(*entity.Order)
	return order, args.Error(1)
}

func (m *mockService) GetRecentOrdersWithItems(ctx context.Context, limit int) ([]entity.Order, error) {
	args := m.Called(ctx, limit)
	orders, _ := args.Get(0).([]entity.Order)
	return orders, args.Error(1)
}

func (m *mockService) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockService) Update(ctx context.Context, id int64, details *entity.Order) (*entity.Order, error) {
	args := m.Called(ctx, id, details)
	order, _ := args.Get(0).(*entity.Order)
	return order, args.Error(1)
}

func (m *mockService) UpdateByNumber(ctx context.Context, orderNumber string, details *entity.Order) (bool, error) {
	args := m.Called(ctx, orderNumber, details)
	return args.Bool(0), args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind    string         `json:"kind"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, svc *mockService, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	Register(e, &Handler{svc: svc})

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestListOrders(t *testing.T) {
	svc := new(mockService)
	svc.On("List", mock.Anything).Return([]entity.Order{{ID: 1, OrderNumber: "ORD-1"}}, nil)

	rec, env := serve(t, svc, http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var data []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, "ORD-1", data[0]["orderNumber"])
}

func TestGetByID(t *testing.T) {
	tests := []struct {
		name   string
		target string
		setup  func(*mockService)
		status int
		kind   string
	}{
		{
			name:   "found",
			target: "/api/orders/5",
			setup: func(s *mockService) {
				s.On("Get", mock.Anything, int64(5)).Return(&entity.Order{ID: 5, OrderNumber: "ORD-5"}, nil)
			},
			status: http.StatusOK,
		},
		{
			name:   "missing",
			target: "/api/orders/6",
			setup: func(s *mockService) {
				s.On("Get", mock.Anything, int64(6)).Return(nil, errorbank.NotFound("order not found"))
			},
			status: http.StatusNotFound,
			kind:   "not_found",
		},
		{
			name:   "non numeric id",
			target: "/api/orders/abc",
			setup:  func(*mockService) {},
			status: http.StatusBadRequest,
			kind:   "bad_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			tt.setup(svc)

			rec, env := serve(t, svc, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.kind, env.Error.Kind)
			svc.AssertExpectations(t)
		})
	}
}

func TestCountRouteIsNotAnID(t *testing.T) {
	svc := new(mockService)
	svc.On("Count", mock.Anything).Return(int64(42), nil)

	rec, env := serve(t, svc, http.MethodGet, "/api/orders/count", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":42}`, string(env.Data))
}

func TestRecentLimit(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
		status    int
	}{
		{name: "default", query: "", wantLimit: DefaultRecentLimit, status: http.StatusOK},
		{name: "explicit", query: "?limit=5", wantLimit: 5, status: http.StatusOK},
		{name: "capped", query: "?limit=5000", wantLimit: 200, status: http.StatusOK},
		{name: "zero", query: "?limit=0", status: http.StatusBadRequest},
		{name: "negative", query: "?limit=-1", status: http.StatusBadRequest},
		{name: "garbage", query: "?limit=ten", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			if tt.wantLimit > 0 {
				svc.On("GetRecentOrdersWithItems", mock.Anything, tt.wantLimit).Return([]entity.Order{}, nil)
			}

			rec, _ := serve(t, svc, http.MethodGet, "/api/orders/recent"+tt.query, "")
			assert.Equal(t, tt.status, rec.Code)
			svc.AssertExpectations(t)
			if tt.wantLimit == 0 {
				svc.AssertNotCalled(t, "GetRecentOrdersWithItems", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDetailsAlwaysRendersItems(t *testing.T) {
	svc := new(mockService)
	svc.On("GetOrderWithItems", mock.Anything, "ORD-1").Return(&entity.Order{ID: 1, OrderNumber: "ORD-1", Items: []entity.OrderItem{}}, nil)

	rec, env := serve(t, svc, http.MethodGet, "/api/orders/number/ORD-1/details", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []any{}, data["items"])
}

func TestGetByNumberMissing(t *testing.T) {
	svc := new(mockService)
	svc.On("GetByNumber", mock.Anything, "NOPE").Return(nil, errorbank.NotFound("order not found"))

	rec, _ := serve(t, svc, http.MethodGet, "/api/orders/number/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrder(t *testing.T) {
	svc := new(mockService)
	svc.On("Create", mock.Anything, mock.AnythingOfType("*entity.Order")).Return(nil).Run(func(args mock.Arguments) {
		order := args.Get(1).(*entity.Order)
		assert.Equal(t, "ORD-9", order.OrderNumber)
		assert.True(t, order.Amount.Equal(decimal.RequireFromString("19.99")))
		order.ID = 9
	})

	rec, env := serve(t, svc, http.MethodPost, "/api/orders", `{"orderNumber":"ORD-9","customerName":"Ada","status":"PENDING","amount":"19.99"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, float64(9), data["id"])
}

func TestCreateOrderValidation(t *testing.T) {
	svc := new(mockService)

	rec, env := serve(t, svc, http.MethodPost, "/api/orders", `{"customerName":"Ada"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "unprocessable_entity", env.Error.Kind)
	assert.Equal(t, []any{"orderNumber", "status"}, env.Error.Details["missing"])

	rec, env = serve(t, svc, http.MethodPost, "/api/orders", `{"orderNumber":"ORD-1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []any{"status"}, env.Error.Details["missing"])

	rec, env = serve(t, svc, http.MethodPost, "/api/orders", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", env.Error.Kind)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateOrder(t *testing.T) {
	svc := new(mockService)
	svc.On("Update", mock.Anything, int64(3), mock.AnythingOfType("*entity.Order")).
		Return(&entity.Order{ID: 3, OrderNumber: "ORD-3", Status: "SHIPPED"}, nil)
	svc.On("Update", mock.Anything, int64(4), mock.Anything).
		Return(nil, errorbank.NotFound("order not found"))

	rec, _ := serve(t, svc, http.MethodPut, "/api/orders/3", `{"status":"SHIPPED"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, svc, http.MethodPut, "/api/orders/4", `{"status":"SHIPPED"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateByNumber(t *testing.T) {
	svc := new(mockService)
	svc.On("UpdateByNumber", mock.Anything, "ORD-1", mock.Anything).Return(true, nil)
	svc.On("UpdateByNumber", mock.Anything, "ORD-2", mock.Anything).Return(false, nil)

	rec, env := serve(t, svc, http.MethodPut, "/api/orders/number/ORD-1", `{"status":"PAID"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = serve(t, svc, http.MethodPut, "/api/orders/number/ORD-2", `{"status":"PAID"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error.Kind)
}

func TestDeleteOrder(t *testing.T) {
	svc := new(mockService)
	svc.On("Delete", mock.Anything, int64(8)).Return(nil)
	svc.On("Delete", mock.Anything, int64(9)).Return(errorbank.Internal("failed", errorbank.WithCause(errors.New("db down"))))

	rec, _ := serve(t, svc, http.MethodDelete, "/api/orders/8", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec, env := serve(t, svc, http.MethodDelete, "/api/orders/9", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", env.Error.Kind)
}
