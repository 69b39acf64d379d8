package entity

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	BaseNoDelete
	UserID uuid.UUID `db:"user_id"`
	Items  []CartItem
}

// CartItem snapshots name and price at add time. Quantity changes do not
// refresh them from the catalog.
type CartItem struct {
	CartID    uuid.UUID `db:"cart_id"`
	ProductID uuid.UUID `db:"product_id"`
	Name      string    `db:"name"`
	Price     float64   `db:"price"`
	Quantity  int       `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
}
