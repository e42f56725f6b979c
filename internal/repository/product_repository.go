package repository

import (
	"context"

	"flatfile-shop/internal/model"
	"flatfile-shop/internal/storage"

	"go.opentelemetry.io/otel"
)

const ProductsCollection = "products"

// ProductRepository reads and writes the whole products collection.
type ProductRepository struct {
	store storage.Store
}

var ProductRepositoryTracer = otel.Tracer("ProductRepository")

func NewProductRepository(store storage.Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	return storage.LoadCollection[model.Product](ctx, r.store, ProductsCollection)
}

func (r *ProductRepository) SaveAll(ctx context.Context, products []model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.SaveAll")
	defer span.End()

	return storage.SaveCollection(ctx, r.store, ProductsCollection, products)
}
