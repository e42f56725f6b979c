package http

import "net/http"

// NewRouter registers the API routes. No other paths are served.
func NewRouter(products *ProductHandler, carts *CartHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", products.GetAll)
	mux.HandleFunc("GET /api/products/{pid}", products.GetByID)
	mux.HandleFunc("POST /api/products", products.Create)
	mux.HandleFunc("PUT /api/products/{pid}", products.Update)
	mux.HandleFunc("DELETE /api/products/{pid}", products.Delete)

	mux.HandleFunc("POST /api/carts", carts.Create)
	mux.HandleFunc("GET /api/carts/{cid}", carts.GetProducts)
	mux.HandleFunc("POST /api/carts/{cid}/product/{pid}", carts.AddProduct)

	return mux
}
