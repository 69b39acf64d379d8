package request

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	ImageURL    string  `json:"image_url" validate:"required,url"`
}

// UpdateProductRequest is a patch: only non-nil fields are applied.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
}

type BulkImportRequest struct {
	Products []CreateProductRequest `json:"products" validate:"required,min=1,dive"`
}
