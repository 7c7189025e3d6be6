package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/dscommerce/internal/domain/category"
	"github.com/example/dscommerce/internal/domain/order"
	"github.com/example/dscommerce/internal/domain/product"
	"github.com/example/dscommerce/internal/domain/user"
)

// MemoryStore is an in-memory Store. A single lock serializes writers, so
// the reference check and the removal in TryDeleteProduct are atomic.
type MemoryStore struct {
	mu            sync.RWMutex
	categories    map[int64]category.Category
	products      map[int64]*product.Product
	orders        map[int64]*order.Order
	users         map[string]*user.User // by email
	nextProductID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories:    make(map[int64]category.Category),
		products:      make(map[int64]*product.Product),
		orders:        make(map[int64]*order.Order),
		users:         make(map[string]*user.User),
		nextProductID: 1,
	}
}

// PutCategory stores a category
func (ms *MemoryStore) PutCategory(c category.Category) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.categories[c.ID] = c
}

// PutProduct stores a product as given, keeping the id sequence ahead of it
func (ms *MemoryStore) PutProduct(p product.Product) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.products[p.ID] = cloneProduct(&p)
	if p.ID >= ms.nextProductID {
		ms.nextProductID = p.ID + 1
	}
}

// PutOrder stores an order
func (ms *MemoryStore) PutOrder(o order.Order) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.orders[o.ID] = cloneOrder(&o)
}

// PutUser stores a user
func (ms *MemoryStore) PutUser(u user.User) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.users[strings.ToLower(u.Email)] = &u
}

func (ms *MemoryStore) GetProduct(_ context.Context, id int64) (*product.Product, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	p, ok := ms.products[id]
	if !ok {
		return nil, false, nil
	}
	return cloneProduct(p), true, nil
}

func (ms *MemoryStore) ListProducts(_ context.Context, f ProductFilter) (*ProductPage, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	needle := strings.ToUpper(f.Name)
	matched := make([]*product.Product, 0, len(ms.products))
	for _, p := range ms.products {
		if strings.Contains(strings.ToUpper(p.Name), needle) {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch f.Sort {
		case SortByName:
			less = a.Name < b.Name || (a.Name == b.Name && a.ID < b.ID)
		case SortByPrice:
			less = a.Price < b.Price || (a.Price == b.Price && a.ID < b.ID)
		default:
			less = a.ID < b.ID
		}
		if f.Desc {
			return !less
		}
		return less
	})

	page := &ProductPage{Total: int64(len(matched)), Items: []product.Product{}}
	start := f.Page * f.Size
	if f.Size <= 0 || start >= len(matched) {
		return page, nil
	}
	end := min(start+f.Size, len(matched))
	for _, p := range matched[start:end] {
		page.Items = append(page.Items, *cloneProduct(p))
	}
	return page, nil
}

func (ms *MemoryStore) CreateProduct(_ context.Context, in product.Input) (*product.Product, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	categories, err := ms.resolveCategories(in.CategoryIDs())
	if err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:          ms.nextProductID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImgURL:      in.ImgURL,
		Categories:  categories,
	}
	ms.nextProductID++
	ms.products[p.ID] = p
	return cloneProduct(p), nil
}

func (ms *MemoryStore) UpdateProduct(_ context.Context, id int64, in product.Input) (*product.Product, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.products[id]; !ok {
		return nil, false, nil
	}
	categories, err := ms.resolveCategories(in.CategoryIDs())
	if err != nil {
		return nil, true, err
	}

	p := &product.Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImgURL:      in.ImgURL,
		Categories:  categories,
	}
	ms.products[id] = p
	return cloneProduct(p), true, nil
}

func (ms *MemoryStore) TryDeleteProduct(_ context.Context, id int64) (DeleteResult, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.products[id]; !ok {
		return DeleteNotFound, nil
	}
	for _, o := range ms.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				return DeleteReferenced, nil
			}
		}
	}
	delete(ms.products, id)
	return Deleted, nil
}

func (ms *MemoryStore) GetOrder(_ context.Context, id int64) (*order.Order, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	o, ok := ms.orders[id]
	if !ok {
		return nil, false, nil
	}
	return cloneOrder(o), true, nil
}

func (ms *MemoryStore) GetUserByEmail(_ context.Context, email string) (*user.User, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	u, ok := ms.users[strings.ToLower(email)]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

// resolveCategories must be called with the lock held.
func (ms *MemoryStore) resolveCategories(ids []int64) ([]category.Category, error) {
	out := make([]category.Category, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, ok := ms.categories[id]
		if !ok {
			return nil, ErrUnknownCategory
		}
		out = append(out, c)
	}
	return out, nil
}

func cloneProduct(p *product.Product) *product.Product {
	cp := *p
	cp.Categories = append([]category.Category(nil), p.Categories...)
	return &cp
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	if o.Payment != nil {
		pay := *o.Payment
		cp.Payment = &pay
	}
	return &cp
}
