package query

import (
	"context"
	"strings"

	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/authz"
	"github.com/example/dscommerce/internal/domain/order"
	"github.com/example/dscommerce/internal/infrastructure/store"
	"github.com/example/dscommerce/internal/outcome"
	"github.com/example/dscommerce/internal/readmodel"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListProducts selects a page of the catalog. Sort is "field" or
// "field,desc" with field one of id, name, price.
type ListProducts struct {
	Name string
	Page int
	Size int
	Sort string
}

// filter normalizes q into a storage filter. Out of range paging falls back
// to the defaults and unknown sort fields sort by id.
func (q ListProducts) filter() store.ProductFilter {
	f := store.ProductFilter{Name: q.Name, Page: q.Page, Size: q.Size, Sort: store.SortByID}
	if f.Page < 0 {
		f.Page = 0
	}
	if f.Size <= 0 {
		f.Size = DefaultPageSize
	}
	if f.Size > MaxPageSize {
		f.Size = MaxPageSize
	}

	field, dir, _ := strings.Cut(q.Sort, ",")
	switch strings.ToLower(strings.TrimSpace(field)) {
	case store.SortByName:
		f.Sort = store.SortByName
	case store.SortByPrice:
		f.Sort = store.SortByPrice
	}
	f.Desc = strings.EqualFold(strings.TrimSpace(dir), "desc")
	return f
}

type Handler struct {
	products store.ProductStore
	orders   store.OrderStore
}

func NewHandler(products store.ProductStore, orders store.OrderStore) *Handler {
	return &Handler{products: products, orders: orders}
}

// Products

func (h *Handler) GetProduct(ctx context.Context, who auth.Identity, id int64) outcome.Outcome {
	return outcome.Pipeline{
		outcome.Authorized(who, authz.ProductRead),
	}.Run(ctx, func(ctx context.Context) outcome.Outcome {
		p, ok, err := h.products.GetProduct(ctx, id)
		if err != nil {
			return outcome.Fail(err)
		}
		if !ok {
			return outcome.Fail(outcome.ErrNotFound)
		}
		return outcome.OK(readmodel.FromProduct(p))
	})
}

// ListProducts never fails on an empty match; it returns an empty page.
func (h *Handler) ListProducts(ctx context.Context, who auth.Identity, q ListProducts) outcome.Outcome {
	return outcome.Pipeline{
		outcome.Authorized(who, authz.ProductRead),
	}.Run(ctx, func(ctx context.Context) outcome.Outcome {
		f := q.filter()
		page, err := h.products.ListProducts(ctx, f)
		if err != nil {
			return outcome.Fail(err)
		}

		content := make([]ProductSummaryReadModel, 0, len(page.Items))
		for i := range page.Items {
			content = append(content, readmodel.SummaryFromProduct(&page.Items[i]))
		}
		return outcome.OK(readmodel.NewPage(content, f.Page, f.Size, page.Total))
	})
}

// Orders

// GetOrder: authenticated with a role, order exists, and the caller is an
// admin or the order's client.
func (h *Handler) GetOrder(ctx context.Context, who auth.Identity, id int64) outcome.Outcome {
	var o *order.Order
	return outcome.Pipeline{
		outcome.Authorized(who, authz.OrderRead),
		func(ctx context.Context) error {
			found, ok, err := h.orders.GetOrder(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return outcome.ErrNotFound
			}
			o = found
			return nil
		},
		outcome.Owns(who, authz.OrderRead, func() int64 { return o.Client.ID }),
	}.Run(ctx, func(context.Context) outcome.Outcome {
		return outcome.OK(readmodel.FromOrder(o))
	})
}
