package response

import (
	"time"

	"github.com/asimov86/ecommerce-api/internal/data/entity"
)

type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type ShippingAddressResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type PaymentResultResponse struct {
	ID           *string `json:"id,omitempty"`
	Status       *string `json:"status,omitempty"`
	UpdateTime   *string `json:"update_time,omitempty"`
	EmailAddress *string `json:"email_address,omitempty"`
}

type OrderResponse struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	Items           []OrderItemResponse     `json:"order_items"`
	ShippingAddress ShippingAddressResponse `json:"shipping_address"`
	PaymentMethod   string                  `json:"payment_method"`
	TotalPrice      float64                 `json:"total_price"`
	IsPaid          bool                    `json:"is_paid"`
	PaidAt          *time.Time              `json:"paid_at,omitempty"`
	PaymentResult   *PaymentResultResponse  `json:"payment_result,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

// OrderDetailResponse attaches the owning user's public identity.
type OrderDetailResponse struct {
	OrderResponse
	User OrderUserResponse `json:"user"`
}

type OrderUserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func OrderToResponse(order *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	resp := OrderResponse{
		ID:     order.ID.String(),
		UserID: order.UserID.String(),
		Items:  items,
		ShippingAddress: ShippingAddressResponse{
			Address:    order.Address,
			City:       order.City,
			PostalCode: order.PostalCode,
			Country:    order.Country,
		},
		PaymentMethod: order.PaymentMethod,
		TotalPrice:    order.TotalPrice,
		IsPaid:        order.IsPaid,
		PaidAt:        order.PaidAt,
		CreatedAt:     order.CreatedAt,
	}

	if order.IsPaid {
		resp.PaymentResult = &PaymentResultResponse{
			ID:           order.Payment.ID,
			Status:       order.Payment.Status,
			UpdateTime:   order.Payment.UpdateTime,
			EmailAddress: order.Payment.EmailAddress,
		}
	}

	return resp
}
