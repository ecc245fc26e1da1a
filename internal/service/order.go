package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/events"
	"marketplace/backend/internal/store"
)

type OrderService struct {
	repo   store.Repository
	notify *notifier
}

// CreateOrder charges price times quantity and takes the quantity out of
// stock. The order is written first and the stock second; the two writes are
// not atomic.
//
// Stock is checked against the stored product rather than the snapshot, but
// the amount uses the snapshot price the buyer was shown.
func (s *OrderService) CreateOrder(ctx context.Context, buyer domain.User, product domain.Product, quantity int) (*domain.Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	current, err := s.repo.FindProductByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("product %d: %w", product.ID, store.ErrNotFound)
	}
	if current.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	amount := orderAmount(product.Price, quantity)
	order, err := s.repo.AddOrder(ctx, buyer.ID, product.ID, quantity, amount)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DecreaseStock(ctx, product.ID, quantity); err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("order %d stored without stock update: %w", order.ID, err)
	}

	s.notify.publish(ctx, events.SubjectOrderCreated, events.OrderCreated{
		OrderID:   order.ID,
		BuyerID:   order.BuyerID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		Amount:    order.Amount,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	})
	return order, nil
}

func orderAmount(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).InexactFloat64()
}
