package mocks

import (
	"context"
	"sync"

	"github.com/example/dscommerce/internal/domain/category"
	"github.com/example/dscommerce/internal/domain/order"
	"github.com/example/dscommerce/internal/domain/product"
	"github.com/example/dscommerce/internal/domain/user"
	"github.com/example/dscommerce/internal/infrastructure/store"
)

// Call records one storage call
type Call struct {
	Method string
	ID     int64
}

// MockStore is a map-backed store.Store for testing. Every call is recorded
// so tests can assert that a denied caller never reached storage.
type MockStore struct {
	mu sync.Mutex

	Products   map[int64]*product.Product
	Orders     map[int64]*order.Order
	Users      map[string]*user.User
	Categories map[int64]category.Category
	// Referenced marks products that an order item points at.
	Referenced map[int64]bool
	// Err, when set, is returned by every call.
	Err error

	Calls  []Call
	nextID int64
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		Products:   make(map[int64]*product.Product),
		Orders:     make(map[int64]*order.Order),
		Users:      make(map[string]*user.User),
		Categories: make(map[int64]category.Category),
		Referenced: make(map[int64]bool),
		Calls:      make([]Call, 0),
		nextID:     100,
	}
}

// CallCount returns how many calls have been recorded
func (m *MockStore) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Methods returns the recorded method names in call order
func (m *MockStore) Methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.Method)
	}
	return out
}

func (m *MockStore) record(method string, id int64) {
	m.Calls = append(m.Calls, Call{Method: method, ID: id})
}

func (m *MockStore) GetProduct(_ context.Context, id int64) (*product.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetProduct", id)

	if m.Err != nil {
		return nil, false, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, false, nil
	}
	cp := *p
	return &cp, true, nil
}

func (m *MockStore) ListProducts(_ context.Context, f store.ProductFilter) (*store.ProductPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListProducts", 0)

	if m.Err != nil {
		return nil, m.Err
	}
	page := &store.ProductPage{Items: []product.Product{}}
	for _, p := range m.Products {
		page.Items = append(page.Items, *p)
	}
	page.Total = int64(len(page.Items))
	return page, nil
}

func (m *MockStore) CreateProduct(_ context.Context, in product.Input) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateProduct", 0)

	if m.Err != nil {
		return nil, m.Err
	}
	cats, err := m.resolve(in.CategoryIDs())
	if err != nil {
		return nil, err
	}
	m.nextID++
	p := &product.Product{ID: m.nextID, Name: in.Name, Description: in.Description, Price: in.Price, ImgURL: in.ImgURL, Categories: cats}
	m.Products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *MockStore) UpdateProduct(_ context.Context, id int64, in product.Input) (*product.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateProduct", id)

	if m.Err != nil {
		return nil, false, m.Err
	}
	if _, ok := m.Products[id]; !ok {
		return nil, false, nil
	}
	cats, err := m.resolve(in.CategoryIDs())
	if err != nil {
		return nil, true, err
	}
	p := &product.Product{ID: id, Name: in.Name, Description: in.Description, Price: in.Price, ImgURL: in.ImgURL, Categories: cats}
	m.Products[id] = p
	cp := *p
	return &cp, true, nil
}

func (m *MockStore) TryDeleteProduct(_ context.Context, id int64) (store.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("TryDeleteProduct", id)

	if m.Err != nil {
		return 0, m.Err
	}
	if _, ok := m.Products[id]; !ok {
		return store.DeleteNotFound, nil
	}
	if m.Referenced[id] {
		return store.DeleteReferenced, nil
	}
	delete(m.Products, id)
	return store.Deleted, nil
}

func (m *MockStore) GetOrder(_ context.Context, id int64) (*order.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetOrder", id)

	if m.Err != nil {
		return nil, false, m.Err
	}
	o, ok := m.Orders[id]
	if !ok {
		return nil, false, nil
	}
	cp := *o
	return &cp, true, nil
}

func (m *MockStore) GetUserByEmail(_ context.Context, email string) (*user.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetUserByEmail", 0)

	if m.Err != nil {
		return nil, false, m.Err
	}
	u, ok := m.Users[email]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

func (m *MockStore) resolve(ids []int64) ([]category.Category, error) {
	out := make([]category.Category, 0, len(ids))
	for _, id := range ids {
		c, ok := m.Categories[id]
		if !ok {
			return nil, store.ErrUnknownCategory
		}
		out = append(out, c)
	}
	return out, nil
}

var _ store.Store = (*MockStore)(nil)
