package request

type OrderItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid4"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest     `json:"order_items" validate:"dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
}

// PayOrderRequest carries the payment provider result verbatim.
type PayOrderRequest struct {
	ID           *string `json:"id,omitempty"`
	Status       *string `json:"status,omitempty"`
	UpdateTime   *string `json:"update_time,omitempty"`
	EmailAddress *string `json:"email_address,omitempty"`
}
