package order

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Additional-Code/orderbook/internal/entity"
	"github.com/Additional-Code/orderbook/internal/messaging"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindAll(ctx context.Context) ([]entity.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]entity.Order)
	return orders, args.Error(1)
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*entity.Order)
	return order, args.Error(1)
}

func (m *mockStore) FindByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	args := m.Called(ctx, orderNumber)
	order, _ := args.Get(0).(*entity.Order)
	return order, args.Error(1)
}

func (m *mockStore) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	args := m.Called(ctx, limit)
	orders, _ := args.Get(0).([]entity.Order)
	return orders, args.Error(1)
}

func (m *mockStore) FindItemsByOrderNumber(ctx context.Context, orderNumber string) ([]entity.OrderItem, error) {
	args := m.Called(ctx, orderNumber)
	items, _ := args.Get(0).([]entity.OrderItem)
	return items, args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, order *entity.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) UpdateByOrderNumber(ctx context.Context, orderNumber string, order *entity.Order) (int64, error) {
	args := m.Called(ctx, orderNumber, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteByID(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key []byte, value []byte, headers map[string]string) error {
	return m.Called(ctx, key, value, headers).Error(0)
}

func (m *mockPublisher) Consume(ctx context.Context, handler messaging.Handler) error {
	return m.Called(ctx, handler).Error(0)
}

func (m *mockPublisher) Topic() string {
	return m.Called().String(0)
}
