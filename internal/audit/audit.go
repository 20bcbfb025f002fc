// Package audit records best-effort audit events after authoritative state
// changes commit. Sinks never fail the operation that produced the event.
package audit

import (
	"context"
	"fmt"
	"log"
	"time"
)

type Kind string

const (
	KindOrderDelivered Kind = "order_delivered"
	KindTicketOpened   Kind = "ticket_opened"
	KindTicketClosed   Kind = "ticket_closed"
)

type Event struct {
	Kind      Kind      `json:"kind"`
	OrderID   int64     `json:"order_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Product   string    `json:"product,omitempty"`
	Category  string    `json:"category,omitempty"`
	ChannelID string    `json:"channel_id,omitempty"`
	At        time.Time `json:"at"`
}

// Recorder accepts events fire-and-forget. Implementations swallow their own
// failures.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// Fanout forwards each event to every sink.
type Fanout []Recorder

func (f Fanout) Record(ctx context.Context, event Event) {
	for _, r := range f {
		r.Record(ctx, event)
	}
}

// ChannelMessenger is the slice of the gateway needed to post audit lines.
type ChannelMessenger interface {
	SendMessage(ctx context.Context, channelID, content string) (string, error)
}

// ChannelSink posts human-readable audit lines into a platform channel.
type ChannelSink struct {
	gw        ChannelMessenger
	channelID string
	logger    *log.Logger
}

func NewChannelSink(gw ChannelMessenger, channelID string, logger *log.Logger) *ChannelSink {
	if logger == nil {
		logger = log.Default()
	}
	return &ChannelSink{gw: gw, channelID: channelID, logger: logger}
}

func (s *ChannelSink) Record(ctx context.Context, event Event) {
	if s.channelID == "" {
		return
	}
	if _, err := s.gw.SendMessage(ctx, s.channelID, formatLine(event)); err != nil {
		s.logger.Printf("audit: post to log channel failed: %v", err)
	}
}

func formatLine(event Event) string {
	switch event.Kind {
	case KindOrderDelivered:
		return fmt.Sprintf("Delivered order #%d to %s (%s)", event.OrderID, event.UserID, event.Product)
	case KindTicketOpened:
		return fmt.Sprintf("Ticket opened by %s (%s)", event.UserID, event.Category)
	case KindTicketClosed:
		return fmt.Sprintf("Ticket closed by %s in %s", event.UserID, event.ChannelID)
	default:
		return fmt.Sprintf("%s user=%s", event.Kind, event.UserID)
	}
}
