package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/EXP1111/eclipse/internal/domain"
)

// StockManager is the minimal interface needed by the stock endpoints.
type StockManager interface {
	AddStock(ctx context.Context, productName, rawKeys string) (int, error)
	RemoveStock(ctx context.Context, productName string, count int) (int, error)
	ListStockSummary(ctx context.Context) ([]domain.StockSummary, error)
}

// HandleAddStock returns an HTTP handler for bulk key additions.
func HandleAddStock(svc StockManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addStockRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		added, err := svc.AddStock(r.Context(), req.Product, req.Keys)
		if err != nil {
			writeStockError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stockMutationResponse{Product: req.Product, Count: added})
	}
}

// HandleRemoveStock returns an HTTP handler for removing surplus available
// keys.
func HandleRemoveStock(svc StockManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req removeStockRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		removed, err := svc.RemoveStock(r.Context(), req.Product, req.Count)
		if err != nil {
			writeStockError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stockMutationResponse{Product: req.Product, Count: removed})
	}
}

// HandleStockSummary returns the price-ordered stock listing.
func HandleStockSummary(svc StockManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := svc.ListStockSummary(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		rows := make([]stockSummaryRow, 0, len(summaries))
		for _, s := range summaries {
			rows = append(rows, stockSummaryRow{
				Product:    s.ProductName,
				PriceCents: s.PriceCents,
				Available:  s.Available,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stockSummaryResponse{Products: rows})
	}
}

func writeStockError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrProductNameRequired:
		writeError(w, http.StatusBadRequest, codeProductNameRequired, err.Error())
	case domain.ErrInvalidQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case domain.ErrProductNotFound:
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type addStockRequest struct {
	Product string `json:"product"`
	Keys    string `json:"keys"`
}

type removeStockRequest struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

type stockMutationResponse struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

type stockSummaryRow struct {
	Product    string `json:"product"`
	PriceCents int64  `json:"price_cents"`
	Available  int    `json:"available"`
}

type stockSummaryResponse struct {
	Products []stockSummaryRow `json:"products"`
}
