package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CatalogStore is implemented by *catalog.Repo.
type CatalogStore interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Create(ctx context.Context, np catalog.NewProduct) (catalog.Product, error)
}

type CatalogHandler struct {
	Store CatalogStore
}

type CreateProductReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
}

func (h *CatalogHandler) Register(r *chi.Mux, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/api/products", h.listProducts)
	r.With(requireAuth, requireAdmin).Post("/api/admin/products", h.createProduct)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.List(ctx)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch products.")
		return
	}
	if ps == nil {
		ps = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "Product name is required.")
		return
	}
	if !req.Price.IsPositive() {
		writeMessage(w, http.StatusBadRequest, "Product price must be a positive number.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Store.Create(ctx, catalog.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrNameTaken) {
			writeMessage(w, http.StatusConflict, "Product name already exists.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to add product.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Product added successfully.",
		"product": p,
	})
}
