package repository

import (
	"context"

	"flatfile-shop/internal/model"
	"flatfile-shop/internal/storage"

	"go.opentelemetry.io/otel"
)

const CartsCollection = "carts"

type CartRepository struct {
	store storage.Store
}

var CartRepositoryTracer = otel.Tracer("CartRepository")

func NewCartRepository(store storage.Store) *CartRepository {
	return &CartRepository{store: store}
}

func (r *CartRepository) FindAll(ctx context.Context) ([]model.Cart, error) {
	ctx, span := CartRepositoryTracer.Start(ctx, "CartRepository.FindAll")
	defer span.End()

	carts, err := storage.LoadCollection[model.Cart](ctx, r.store, CartsCollection)
	if err != nil {
		return nil, err
	}
	for i := range carts {
		if carts[i].Products == nil {
			carts[i].Products = []model.LineItem{}
		}
	}
	return carts, nil
}

func (r *CartRepository) SaveAll(ctx context.Context, carts []model.Cart) error {
	ctx, span := CartRepositoryTracer.Start(ctx, "CartRepository.SaveAll")
	defer span.End()

	return storage.SaveCollection(ctx, r.store, CartsCollection, carts)
}
