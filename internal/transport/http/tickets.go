package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/EXP1111/eclipse/internal/app"
	"github.com/EXP1111/eclipse/internal/domain"
	"github.com/gorilla/mux"
)

// TicketManager is the minimal interface needed by the ticket endpoints.
type TicketManager interface {
	Open(ctx context.Context, in app.OpenTicketInput) (string, error)
	Close(ctx context.Context, channelID, closerID string) error
}

// HandleOpenTicket returns an HTTP handler for opening a ticket channel.
func HandleOpenTicket(svc TicketManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openTicketRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		category := domain.TicketCategory(req.Category)
		if category != domain.TicketCategoryPurchase && category != domain.TicketCategorySupport {
			writeError(w, http.StatusBadRequest, codeInvalidCategory, "category must be purchase or support")
			return
		}
		if req.Requester == "" {
			writeError(w, http.StatusBadRequest, codeRequesterRequired, "requester required")
			return
		}

		channelID, err := svc.Open(r.Context(), app.OpenTicketInput{
			RequesterID:   req.Requester,
			RequesterName: req.RequesterName,
			Category:      category,
		})
		if err != nil {
			if err == domain.ErrTicketingNotConfigured {
				writeError(w, http.StatusConflict, codeTicketingNotConfigured, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(openTicketResponse{ChannelID: channelID})
	}
}

// HandleCloseTicket returns an HTTP handler for closing a ticket channel.
func HandleCloseTicket(svc TicketManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID := mux.Vars(r)["channel"]

		var req closeTicketRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.Close(r.Context(), channelID, req.Closer); err != nil {
			if err == domain.ErrTicketNotFound {
				writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type openTicketRequest struct {
	Requester     string `json:"requester"`
	RequesterName string `json:"requester_name"`
	Category      string `json:"category"`
}

type openTicketResponse struct {
	ChannelID string `json:"channel_id"`
}

type closeTicketRequest struct {
	Closer string `json:"closer"`
}
