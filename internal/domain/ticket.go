package domain

import "time"

type TicketCategory string

const (
	TicketCategoryPurchase TicketCategory = "purchase"
	TicketCategorySupport  TicketCategory = "support"
)

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is a private channel opened for a buyer's purchase or support
// request. The channel id is the natural key: at most one ticket row exists
// per channel.
type Ticket struct {
	ChannelID string
	UserID    string
	Category  TicketCategory
	Status    TicketStatus
	ClosedAt  *time.Time
}
