package request

type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

type RemoveCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
}
