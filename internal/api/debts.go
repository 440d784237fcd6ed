package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"medimart/m/domain"
)

type paymentRequest struct {
	Payment decimal.Decimal `json:"payment"`
}

func (h *Handler) listDebts(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.ListDebts(r.Context())
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// payDebt posts a payment. A null debt in the response signals the balance
// reached zero and the debt record was removed.
func (h *Handler) payDebt(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin, domain.RoleSupplier) {
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.ledger.PostPayment(r.Context(), chi.URLParam(r, "id"), req.Payment)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"debt": result.Debt, "sold_item": result.SoldItem})
}

func (h *Handler) deleteDebt(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	if err := h.ledger.RemoveDebt(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "debt removed"})
}
