package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"medimart/m/domain"
	"medimart/m/internal/ledger"
)

type productRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	PricePrimary decimal.Decimal `json:"price_primary"`
	PriceOther   decimal.Decimal `json:"price_other"`
	Inventory    int64           `json:"inventory"`
	BatchNo      string          `json:"batch_no"`
}

func (req productRequest) toInput() ledger.ProductInput {
	return ledger.ProductInput{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		PricePrimary: req.PricePrimary,
		PriceOther:   req.PriceOther,
		Inventory:    req.Inventory,
		BatchNo:      req.BatchNo,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.ledger.ListProducts(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.ledger.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.ledger.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	if err := h.ledger.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "product deleted"})
}
