package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeProductNameRequired = "product_name_required"
	codeBuyerRequired       = "buyer_required"
	codeInvalidQuantity     = "invalid_quantity"
	codeProductNotFound     = "product_not_found"
	codeStockNotAvailable   = "stock_not_available"
	codeInvalidCategory     = "invalid_category"
	codeRequesterRequired   = "requester_required"
	codeTicketNotFound      = "ticket_not_found"

	codeTicketingNotConfigured = "ticketing_not_configured"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
