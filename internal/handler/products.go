package handler

import (
	"context"
	"net/http"

	"github.com/printloom/printloom-backend/internal/logging"
)

type catalogLister interface {
	ListProducts(ctx context.Context) ([]byte, error)
}

// ProductsHandler relays the fulfillment provider's catalog. Pure
// passthrough, no local catalog model.
type ProductsHandler struct {
	catalog catalogLister
}

func NewProductsHandler(catalog catalogLister) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		log.Error("catalog fetch failed", "error", err)
		RespondAppError(w, ErrCatalogFailed, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(products); err != nil {
		log.Error("failed to write catalog response", "error", err)
	}
}
