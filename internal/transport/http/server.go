package http

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the operator API: stock administration, key delivery and
// the read-only storefront view.
func NewRouter(stock StockManager, orders KeyDeliverer, tickets TicketManager, storefront StorefrontRenderer, logger *log.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)
	r.Handle("/stock", HandleStockSummary(stock)).Methods(http.MethodGet)
	r.Handle("/stock/add", HandleAddStock(stock)).Methods(http.MethodPost)
	r.Handle("/stock/remove", HandleRemoveStock(stock)).Methods(http.MethodPost)
	r.Handle("/orders/deliver", HandleDeliver(orders)).Methods(http.MethodPost)
	r.Handle("/tickets", HandleOpenTicket(tickets)).Methods(http.MethodPost)
	r.Handle("/tickets/{channel}/close", HandleCloseTicket(tickets)).Methods(http.MethodPost)
	r.Handle("/storefront", HandleStorefrontView(storefront)).Methods(http.MethodGet)
	r.NotFoundHandler = NotFoundHandler()

	return RequestLogger(r, logger)
}
