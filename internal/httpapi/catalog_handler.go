package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/j1vetr/EscapeTable/internal/catalog"
)

type CatalogHandler struct {
	repo   catalog.Repository
	logger *log.Logger
}

func NewCatalogHandler(repo catalog.Repository, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{repo: repo, logger: logger}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.logger.Printf("list categories: %v", err)
		writeError(w, http.StatusInternalServerError, "Kategoriler yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(cats))
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Kategori bulunamadı")
			return
		}
		h.logger.Printf("get category: %v", err)
		writeError(w, http.StatusInternalServerError, "Kategori yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if !decodeValid(w, r, &in) {
		return
	}
	c, err := h.repo.CreateCategory(r.Context(), in)
	if err != nil {
		h.logger.Printf("create category: %v", err)
		writeError(w, http.StatusInternalServerError, "Kategori oluşturulamadı")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var p catalog.CategoryPatch
	if !decodeValid(w, r, &p) {
		return
	}
	c, err := h.repo.UpdateCategory(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Kategori bulunamadı")
			return
		}
		h.logger.Printf("update category: %v", err)
		writeError(w, http.StatusInternalServerError, "Kategori güncellenemedi")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Kategori bulunamadı")
			return
		}
		h.logger.Printf("delete category: %v", err)
		writeError(w, http.StatusInternalServerError, "Kategori silinemedi")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Kategori silindi"})
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListProducts(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		h.logger.Printf("list products: %v", err)
		writeError(w, http.StatusInternalServerError, "Ürünler yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(products))
}

func (h *CatalogHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.FeaturedProducts(r.Context())
	if err != nil {
		h.logger.Printf("featured products: %v", err)
		writeError(w, http.StatusInternalServerError, "Ürünler yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(products))
}

// SearchProducts matches product names by substring. Queries under the
// minimum length return an empty list without a database round trip.
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.repo.SearchProducts(r.Context(), q, limit)
	if err != nil {
		h.logger.Printf("search products: %v", err)
		writeError(w, http.StatusInternalServerError, "Arama başarısız oldu")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(products))
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Ürün bulunamadı")
			return
		}
		h.logger.Printf("get product: %v", err)
		writeError(w, http.StatusInternalServerError, "Ürün yüklenemedi")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if !decodeValid(w, r, &in) {
		return
	}
	p, err := h.repo.CreateProduct(r.Context(), in)
	if err != nil {
		h.logger.Printf("create product: %v", err)
		writeError(w, http.StatusInternalServerError, "Ürün oluşturulamadı")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ProductPatch
	if !decodeValid(w, r, &patch) {
		return
	}
	p, err := h.repo.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Ürün bulunamadı")
			return
		}
		h.logger.Printf("update product: %v", err)
		writeError(w, http.StatusInternalServerError, "Ürün güncellenemedi")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Ürün bulunamadı")
			return
		}
		h.logger.Printf("delete product: %v", err)
		writeError(w, http.StatusInternalServerError, "Ürün silinemedi")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ürün silindi"})
}

type adjustStockRequest struct {
	Change int    `json:"change" validate:"required"`
	Reason string `json:"reason" validate:"required"`
	Notes  string `json:"notes"`
}

func (h *CatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var in adjustStockRequest
	if !decodeValid(w, r, &in) {
		return
	}
	if err := h.repo.AdjustStock(r.Context(), chi.URLParam(r, "id"), in.Change, in.Reason, in.Notes); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Ürün bulunamadı")
			return
		}
		h.logger.Printf("adjust stock: %v", err)
		writeError(w, http.StatusInternalServerError, "Stok güncellenemedi")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Stok güncellendi"})
}

// emptyIfNil keeps empty list responses as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
