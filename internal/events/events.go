// Package events publishes marketplace domain events. Publishing is best
// effort: a failed publish is reported to the caller, who logs it and moves
// on, so the store stays the only source of truth.
package events

import (
	"context"
	"time"
)

const (
	SubjectUserRegistered       = "market.user.registered"
	SubjectUserBanned           = "market.user.banned"
	SubjectProductPublished     = "market.product.published"
	SubjectProductStatusChanged = "market.product.status_changed"
	SubjectOrderCreated         = "market.order.created"
	SubjectComplaintSubmitted   = "market.complaint.submitted"
	SubjectComplaintHandled     = "market.complaint.handled"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ string, _ any) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

type UserRegistered struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// UserBanned carries the admin's reason. The store never records it.
type UserBanned struct {
	UserID int    `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

type ProductPublished struct {
	ProductID int     `json:"product_id"`
	SellerID  int     `json:"seller_id"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
}

type ProductStatusChanged struct {
	ProductID int    `json:"product_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

type OrderCreated struct {
	OrderID   int       `json:"order_id"`
	BuyerID   int       `json:"buyer_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ComplaintSubmitted struct {
	ComplaintID   int    `json:"complaint_id"`
	ComplainantID int    `json:"complainant_id"`
	Type          string `json:"type"`
	ProductID     *int   `json:"product_id,omitempty"`
	OrderID       *int   `json:"order_id,omitempty"`
}

type ComplaintHandled struct {
	ComplaintID int    `json:"complaint_id"`
	Status      string `json:"status"`
	Result      string `json:"result"`
}
