package command

import "github.com/example/dscommerce/internal/domain/product"

// Product Commands
type CreateProduct struct {
	product.Input
}

type UpdateProduct struct {
	ProductID int64
	product.Input
}

type DeleteProduct struct {
	ProductID int64
}
