package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"flatfile-shop/internal/model"
	"flatfile-shop/internal/repository"
	"flatfile-shop/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (*ProductService, *CartService) {
	t.Helper()
	store := storage.NewFileStore(t.TempDir(), nil)
	return NewProductService(repository.NewProductRepository(store), nil),
		NewCartService(repository.NewCartRepository(store), nil)
}

func strPtr(s string) *string { return &s }

func TestProductService_CreateListGet(t *testing.T) {
	ctx := context.Background()
	products, _ := newServices(t)

	var created []model.Product
	for i := 1; i <= 3; i++ {
		p, err := products.Create(ctx, model.ProductInput{Title: fmt.Sprintf("P%d", i), Price: float64(i)})
		require.NoError(t, err)
		assert.Equal(t, i, p.ID)
		created = append(created, *p)
	}

	list, err := products.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, list)

	for _, p := range created {
		got, err := products.Get(ctx, fmt.Sprint(p.ID))
		require.NoError(t, err)
		assert.Equal(t, p, *got)
	}
}

func TestProductService_ListEmpty(t *testing.T) {
	products, _ := newServices(t)

	list, err := products.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestProductService_GetNotFound(t *testing.T) {
	ctx := context.Background()
	products, _ := newServices(t)
	_, err := products.Create(ctx, model.ProductInput{Title: "A"})
	require.NoError(t, err)

	for _, id := range []string{"2", "abc", "", "1.5"} {
		_, err := products.Get(ctx, id)
		assert.ErrorIs(t, err, ErrProductNotFound, "id %q", id)
	}
}

func TestProductService_UpdateKeepsIDAndUntouchedFields(t *testing.T) {
	ctx := context.Background()
	products, _ := newServices(t)

	_, err := products.Create(ctx, model.ProductInput{Title: "A", Code: "C1", Price: 10, Stock: 4})
	require.NoError(t, err)

	price := 20.0
	updated, err := products.Update(ctx, "1", model.ProductPatch{Title: strPtr("B"), Price: &price})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.ID)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, 20.0, updated.Price)
	assert.Equal(t, "C1", updated.Code)
	assert.Equal(t, 4, updated.Stock)

	stored, err := products.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, *updated, *stored)
}

func TestProductService_UpdateNotFound(t *testing.T) {
	products, _ := newServices(t)

	_, err := products.Update(context.Background(), "9", model.ProductPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Remove(t *testing.T) {
	ctx := context.Background()
	products, _ := newServices(t)
	for _, title := range []string{"A", "B", "C"} {
		_, err := products.Create(ctx, model.ProductInput{Title: title})
		require.NoError(t, err)
	}

	require.NoError(t, products.Remove(ctx, "2"))

	_, err := products.Get(ctx, "2")
	assert.ErrorIs(t, err, ErrProductNotFound)

	list, err := products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []int{1, 3}, []int{list[0].ID, list[1].ID})

	assert.ErrorIs(t, products.Remove(ctx, "2"), ErrProductNotFound)
}

func TestProductService_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	products, _ := newServices(t)

	const n = 20
	ids := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := products.Create(ctx, model.ProductInput{Title: fmt.Sprint(i)})
			if assert.NoError(t, err) {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}

	list, err := products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n)
}

func TestCartService_CreateSequentialStringIDs(t *testing.T) {
	ctx := context.Background()
	_, carts := newServices(t)

	first, err := carts.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID)
	assert.NotNil(t, first.Products)
	assert.Empty(t, first.Products)

	second, err := carts.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)
}

func TestCartService_AddProductIncrements(t *testing.T) {
	ctx := context.Background()
	_, carts := newServices(t)
	_, err := carts.Create(ctx)
	require.NoError(t, err)

	cart, err := carts.AddProduct(ctx, "1", "5")
	require.NoError(t, err)
	assert.Equal(t, []model.LineItem{{Product: "5", Quantity: 1}}, cart.Products)

	cart, err = carts.AddProduct(ctx, "1", "5")
	require.NoError(t, err)
	assert.Equal(t, "1", cart.ID)
	assert.Equal(t, []model.LineItem{{Product: "5", Quantity: 2}}, cart.Products)

	items, err := carts.GetProducts(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []model.LineItem{{Product: "5", Quantity: 2}}, items)
}

func TestCartService_AddProductDoesNotCheckProducts(t *testing.T) {
	ctx := context.Background()
	_, carts := newServices(t)
	_, err := carts.Create(ctx)
	require.NoError(t, err)

	cart, err := carts.AddProduct(ctx, "1", "does-not-exist")
	require.NoError(t, err)
	assert.Len(t, cart.Products, 1)
}

func TestCartService_NotFound(t *testing.T) {
	ctx := context.Background()
	_, carts := newServices(t)

	_, err := carts.GetProducts(ctx, "1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = carts.AddProduct(ctx, "1", "5")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

type brokenCartRepo struct {
	carts   []model.Cart
	saveErr error
}

func (r *brokenCartRepo) FindAll(context.Context) ([]model.Cart, error) {
	return append([]model.Cart{}, r.carts...), nil
}

func (r *brokenCartRepo) SaveAll(context.Context, []model.Cart) error { return r.saveErr }

func TestCartService_PropagatesErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewCartService(&brokenCartRepo{carts: []model.Cart{{ID: "oops"}}}, nil).Create(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCartNotFound)

	boom := errors.New("disk full")
	repo := &brokenCartRepo{carts: []model.Cart{model.NewCart(1)}, saveErr: boom}
	_, err = NewCartService(repo, nil).AddProduct(ctx, "1", "5")
	assert.ErrorIs(t, err, boom)
}
