package entity

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseNoDelete
	UserID        uuid.UUID `db:"user_id"`
	Address       string    `db:"address"`
	City          string    `db:"city"`
	PostalCode    string    `db:"postal_code"`
	Country       string    `db:"country"`
	PaymentMethod string    `db:"payment_method"`
	TotalPrice    float64   `db:"total_price"`
	IsPaid        bool      `db:"is_paid"`
	PaidAt        *time.Time
	Payment       PaymentResult
	Items         []OrderItem
}

// PaymentResult is stored verbatim from the payment provider callback.
type PaymentResult struct {
	ID           *string `db:"payment_id"`
	Status       *string `db:"payment_status"`
	UpdateTime   *string `db:"payment_update_time"`
	EmailAddress *string `db:"payment_email"`
}

type OrderItem struct {
	OrderID   uuid.UUID `db:"order_id"`
	ProductID uuid.UUID `db:"product_id"`
	Name      string    `db:"name"`
	Price     float64   `db:"price"`
	Quantity  int       `db:"quantity"`
}
