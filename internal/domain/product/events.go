package product

import "time"

const (
	EventProductCreated = "ProductCreated"
	EventProductUpdated = "ProductUpdated"
	EventProductDeleted = "ProductDeleted"
)

type ProductCreated struct {
	ProductID   int64     `json:"product_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	CategoryIDs []int64   `json:"category_ids"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProductUpdated struct {
	ProductID   int64     `json:"product_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	CategoryIDs []int64   `json:"category_ids"`
	UpdatedBy   int64     `json:"updated_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductDeleted struct {
	ProductID int64     `json:"product_id"`
	DeletedBy int64     `json:"deleted_by"`
	DeletedAt time.Time `json:"deleted_at"`
}
