package entity

type Product struct {
	BaseNoDelete
	Name        string  `db:"name"`
	Description string  `db:"description"`
	Price       float64 `db:"price"`
	Stock       int     `db:"stock"`
	Category    string  `db:"category"`
	ImageURL    string  `db:"image_url"`
}
