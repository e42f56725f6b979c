package service

import (
	"context"
	"log/slog"
	"sync"

	"flatfile-shop/internal/logger"
	"flatfile-shop/internal/metrics"
	"flatfile-shop/internal/model"
	"flatfile-shop/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type CartRepository interface {
	FindAll(ctx context.Context) ([]model.Cart, error)
	SaveAll(ctx context.Context, carts []model.Cart) error
}

type CartService struct {
	repo    CartRepository
	metrics *metrics.Metrics
	mu      sync.Mutex
}

var CartServiceTracer = otel.Tracer("CartService")

func NewCartService(repo CartRepository, m *metrics.Metrics) *CartService {
	return &CartService{repo: repo, metrics: m}
}

func indexOfCart(carts []model.Cart, id string) int {
	for i := range carts {
		if carts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CartService) Create(ctx context.Context) (*model.Cart, error) {
	ctx, span := CartServiceTracer.Start(ctx, "CartService.Create")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	id, err := storage.NextID(carts)
	if err != nil {
		return nil, err
	}

	cart := model.NewCart(id)
	carts = append(carts, cart)
	if err := s.repo.SaveAll(ctx, carts); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("cart.id", cart.ID))
	logger.Info(ctx, "Cart created", slog.String("cart.id", cart.ID))
	return &cart, nil
}

// GetProducts returns only the line items of the cart.
func (s *CartService) GetProducts(ctx context.Context, cartID string) ([]model.LineItem, error) {
	ctx, span := CartServiceTracer.Start(ctx, "CartService.GetProducts")
	defer span.End()
	span.SetAttributes(attribute.String("cart.id", cartID))

	carts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfCart(carts, cartID)
	if idx == -1 {
		return nil, ErrCartNotFound
	}
	return carts[idx].Products, nil
}

// AddProduct puts one unit of productID into the cart. The product id is not
// checked against the products collection.
func (s *CartService) AddProduct(ctx context.Context, cartID, productID string) (*model.Cart, error) {
	ctx, span := CartServiceTracer.Start(ctx, "CartService.AddProduct")
	defer span.End()
	span.SetAttributes(
		attribute.String("cart.id", cartID),
		attribute.String("product.id", productID),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfCart(carts, cartID)
	if idx == -1 {
		return nil, ErrCartNotFound
	}

	created := carts[idx].AddProduct(productID)
	if err := s.repo.SaveAll(ctx, carts); err != nil {
		return nil, err
	}
	s.metrics.LineItemAdded(created)

	cart := carts[idx]
	logger.Info(ctx, "Product added to cart",
		slog.String("cart.id", cartID),
		slog.String("product.id", productID),
		slog.Bool("new_line_item", created),
	)
	return &cart, nil
}
