package store

import (
	"context"
	"errors"

	"github.com/example/dscommerce/internal/domain/order"
	"github.com/example/dscommerce/internal/domain/product"
	"github.com/example/dscommerce/internal/domain/user"
)

// ErrUnknownCategory is returned when a product payload references a
// category id that does not exist.
var ErrUnknownCategory = errors.New("unknown category")

// Sortable product columns.
const (
	SortByID    = "id"
	SortByName  = "name"
	SortByPrice = "price"
)

// ProductFilter selects one page of products. Name is a case-insensitive
// substring match; an empty name matches every product.
type ProductFilter struct {
	Name string
	Page int
	Size int
	Sort string
	Desc bool
}

// ProductPage is one page of a product listing together with the total
// number of matching products.
type ProductPage struct {
	Items []product.Product
	Total int64
}

// DeleteResult reports what a transactional delete attempt did.
type DeleteResult int

const (
	Deleted DeleteResult = iota
	DeleteNotFound
	// DeleteReferenced means an order item references the product; nothing
	// was deleted.
	DeleteReferenced
)

// ProductStore persists products and their category links.
type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (*product.Product, bool, error)
	ListProducts(ctx context.Context, f ProductFilter) (*ProductPage, error)
	CreateProduct(ctx context.Context, in product.Input) (*product.Product, error)
	UpdateProduct(ctx context.Context, id int64, in product.Input) (*product.Product, bool, error)
	// TryDeleteProduct checks for order references and deletes in one
	// consistent step.
	TryDeleteProduct(ctx context.Context, id int64) (DeleteResult, error)
}

type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (*order.Order, bool, error)
}

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
}

// Store is the full storage collaborator.
type Store interface {
	ProductStore
	OrderStore
	UserStore
}
