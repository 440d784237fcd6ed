package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"medimart/m/domain"
	"medimart/m/internal/ledger"
)

type saleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type saleRequest struct {
	Items        []saleItemRequest `json:"items"`
	Type         string            `json:"type"`
	PaidAmount   decimal.Decimal   `json:"paid_amount"`
	CustomerName string            `json:"customer_name"`
	ShopName     string            `json:"shop_name"`
	City         string            `json:"city"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin, domain.RoleSupplier) {
		return
	}
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	lines := make([]ledger.SaleLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = ledger.SaleLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	sold, debt, err := h.ledger.RecordSale(r.Context(), ledger.SaleInput{
		Items:        lines,
		Type:         req.Type,
		PaidAmount:   req.PaidAmount,
		CustomerName: req.CustomerName,
		ShopName:     req.ShopName,
		City:         req.City,
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"sold_item": sold, "debt": debt})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.ListSales(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	if err := h.ledger.DeleteSale(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "sale deleted"})
}
