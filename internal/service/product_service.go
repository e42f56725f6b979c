package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"flatfile-shop/internal/logger"
	"flatfile-shop/internal/metrics"
	"flatfile-shop/internal/model"
	"flatfile-shop/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	SaveAll(ctx context.Context, products []model.Product) error
}

// ProductService reloads the products collection on every call and writes it
// back after each mutation. mu serializes the read-modify-write cycles of this
// process only.
type ProductService struct {
	repo    ProductRepository
	metrics *metrics.Metrics
	mu      sync.Mutex
}

var ProductServiceTracer = otel.Tracer("ProductService")

func NewProductService(repo ProductRepository, m *metrics.Metrics) *ProductService {
	return &ProductService{repo: repo, metrics: m}
}

// parseProductID maps a path id onto the stored numeric id. Anything that is
// not a base-10 integer cannot match a product.
func parseProductID(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, false
	}
	return n, true
}

func indexOfProduct(products []model.Product, id string) int {
	n, ok := parseProductID(id)
	if !ok {
		return -1
	}
	for i := range products {
		if products[i].ID == n {
			return i
		}
	}
	return -1
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.List")
	defer span.End()

	return s.repo.FindAll(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfProduct(products, id)
	if idx == -1 {
		return nil, ErrProductNotFound
	}
	return &products[idx], nil
}

func (s *ProductService) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Create")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	id, err := storage.NextID(products)
	if err != nil {
		return nil, err
	}

	created := in.ToProduct(id)
	products = append(products, created)
	if err := s.repo.SaveAll(ctx, products); err != nil {
		return nil, err
	}
	s.metrics.SetProducts(len(products))

	span.SetAttributes(attribute.Int("product.id", id))
	logger.Info(ctx, "Product created", slog.Int("product.id", id))
	return &created, nil
}

func (s *ProductService) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfProduct(products, id)
	if idx == -1 {
		return nil, ErrProductNotFound
	}

	updated := patch.Apply(products[idx])
	updated.ID = products[idx].ID
	products[idx] = updated
	if err := s.repo.SaveAll(ctx, products); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Product updated", slog.Int("product.id", updated.ID))
	return &updated, nil
}

func (s *ProductService) Remove(ctx context.Context, id string) error {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Remove")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	idx := indexOfProduct(products, id)
	if idx == -1 {
		return ErrProductNotFound
	}

	removedID := products[idx].ID
	products = append(products[:idx], products[idx+1:]...)
	if err := s.repo.SaveAll(ctx, products); err != nil {
		return err
	}
	s.metrics.SetProducts(len(products))

	logger.Info(ctx, "Product removed", slog.Int("product.id", removedID))
	return nil
}
