package http

import (
	"net/http"

	"flatfile-shop/internal/service"

	"go.opentelemetry.io/otel"
)

type CartHandler struct {
	service *service.CartService
}

var HttpCartHandlerTracer = otel.Tracer("HttpCartHandler")

func NewCartHandler(service *service.CartService) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCartHandlerTracer.Start(r.Context(), "HttpCartHandler.Create")
	defer span.End()

	cart, err := h.service.Create(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCartHandlerTracer.Start(r.Context(), "HttpCartHandler.GetProducts")
	defer span.End()

	items, err := h.service.GetProducts(ctx, r.PathValue("cid"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCartHandlerTracer.Start(r.Context(), "HttpCartHandler.AddProduct")
	defer span.End()

	cart, err := h.service.AddProduct(ctx, r.PathValue("cid"), r.PathValue("pid"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}
