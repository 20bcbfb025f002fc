package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/EXP1111/eclipse/internal/app"
	"github.com/EXP1111/eclipse/internal/domain"
)

// KeyDeliverer is the minimal interface needed to fulfill an order.
type KeyDeliverer interface {
	Deliver(ctx context.Context, in app.DeliverInput) (app.DeliveryOutcome, error)
}

// HandleDeliver returns an HTTP handler for the "deliver one key" operation.
func HandleDeliver(svc KeyDeliverer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deliverRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		outcome, err := svc.Deliver(r.Context(), app.DeliverInput{
			BuyerID:           req.Buyer,
			ProductName:       req.Product,
			FallbackChannelID: req.FallbackChannel,
		})
		if err != nil {
			switch err {
			case domain.ErrBuyerRequired:
				writeError(w, http.StatusBadRequest, codeBuyerRequired, err.Error())
			case domain.ErrProductNameRequired:
				writeError(w, http.StatusBadRequest, codeProductNameRequired, err.Error())
			case domain.ErrProductNotFound:
				writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
			case domain.ErrStockNotAvailable:
				writeError(w, http.StatusConflict, codeStockNotAvailable, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := deliverResponse{
			OrderID:     outcome.Order.ID,
			Buyer:       outcome.Order.UserID,
			Product:     req.Product,
			Delivery:    string(outcome.Path),
			DeliveredAt: outcome.Order.DeliveredAt,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type deliverRequest struct {
	Buyer           string `json:"buyer"`
	Product         string `json:"product"`
	FallbackChannel string `json:"fallback_channel,omitempty"`
}

type deliverResponse struct {
	OrderID     int64     `json:"order_id"`
	Buyer       string    `json:"buyer"`
	Product     string    `json:"product"`
	Delivery    string    `json:"delivery"`
	DeliveredAt time.Time `json:"delivered_at"`
}
