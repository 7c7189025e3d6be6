package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/domain/product"
)

func seeded(t *testing.T) *MemoryStore {
	t.Helper()
	ms, err := NewSeededMemoryStore()
	require.NoError(t, err)
	return ms
}

func validInput(categoryIDs ...int64) product.Input {
	refs := make([]product.CategoryRef, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		refs = append(refs, product.CategoryRef{ID: id})
	}
	return product.Input{
		Name:        "Me 123",
		Description: "A description long enough",
		Price:       20,
		Categories:  refs,
	}
}

func TestSeed(t *testing.T) {
	ms := seeded(t)
	ctx := context.Background()

	p, ok, err := ms.GetProduct(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Smart TV", p.Name)
	assert.Len(t, p.Categories, 2)

	o, ok, err := ms.GetOrder(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1431", o.Total().String())
	assert.Equal(t, int64(1), o.Client.ID)

	u, ok, err := ms.GetUserByEmail(ctx, "ALEX@gmail.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, u.Roles.Has(auth.RoleAdmin))
	assert.True(t, auth.CheckPassword(SeedPassword, u.PasswordHash))
}

func TestListProducts_FilterIsCaseInsensitive(t *testing.T) {
	ms := seeded(t)

	page, err := ms.ListProducts(context.Background(), ProductFilter{Name: "macbook", Size: 20})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(3), page.Items[0].ID)
	assert.Equal(t, int64(1), page.Total)
}

func TestListProducts_Paging(t *testing.T) {
	ms := seeded(t)
	ctx := context.Background()

	page, err := ms.ListProducts(ctx, ProductFilter{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	require.Len(t, page.Items, 10)
	assert.Equal(t, int64(11), page.Items[0].ID)

	page, err = ms.ListProducts(ctx, ProductFilter{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)

	page, err = ms.ListProducts(ctx, ProductFilter{Page: 9, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}

func TestListProducts_SortByPriceDesc(t *testing.T) {
	ms := seeded(t)

	page, err := ms.ListProducts(context.Background(), ProductFilter{Size: 3, Sort: SortByPrice, Desc: true})
	require.NoError(t, err)

	require.Len(t, page.Items, 3)
	assert.Equal(t, "PC Gamer Foo", page.Items[0].Name)
	assert.GreaterOrEqual(t, page.Items[0].Price, page.Items[1].Price)
	assert.GreaterOrEqual(t, page.Items[1].Price, page.Items[2].Price)
}

func TestCreateProduct(t *testing.T) {
	ms := seeded(t)
	ctx := context.Background()

	p, err := ms.CreateProduct(ctx, validInput(2, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(26), p.ID)
	assert.Equal(t, "Eletrônicos", p.Categories[0].Name)

	_, err = ms.CreateProduct(ctx, validInput(99))
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestUpdateProduct(t *testing.T) {
	ms := seeded(t)
	ctx := context.Background()

	in := validInput(1)
	in.Name = "Updated"
	p, ok, err := ms.UpdateProduct(ctx, 5, in)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Updated", p.Name)

	_, ok, err = ms.UpdateProduct(ctx, 999, in)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTryDeleteProduct(t *testing.T) {
	ms := seeded(t)
	ctx := context.Background()

	res, err := ms.TryDeleteProduct(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, DeleteReferenced, res)

	res, err = ms.TryDeleteProduct(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, Deleted, res)

	res, err = ms.TryDeleteProduct(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, DeleteNotFound, res)
}

func TestTryDeleteProduct_ConcurrentCallersDeleteOnce(t *testing.T) {
	ms := seeded(t)

	var wg sync.WaitGroup
	results := make(chan DeleteResult, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ms.TryDeleteProduct(context.Background(), 10)
			assert.NoError(t, err)
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	deleted := 0
	for res := range results {
		if res == Deleted {
			deleted++
		} else {
			assert.Equal(t, DeleteNotFound, res)
		}
	}
	assert.Equal(t, 1, deleted)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ms := seeded(t)
	ctx := context.Background()

	p, _, err := ms.GetProduct(ctx, 2)
	require.NoError(t, err)
	p.Name = "mutated"
	p.Categories[0].Name = "mutated"

	again, _, err := ms.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Smart TV", again.Name)
	assert.Equal(t, "Eletrônicos", again.Categories[0].Name)
}
