package audit

import (
	"context"
	"encoding/json"
	"log"

	stan "github.com/nats-io/stan.go"
)

// StreamSink publishes events as JSON to a NATS Streaming subject so
// downstream consumers (accounting, fraud review) can tail the order flow.
type StreamSink struct {
	conn    stan.Conn
	subject string
	logger  *log.Logger
}

func NewStreamSink(conn stan.Conn, subject string, logger *log.Logger) *StreamSink {
	if logger == nil {
		logger = log.Default()
	}
	return &StreamSink{conn: conn, subject: subject, logger: logger}
}

func (s *StreamSink) Record(_ context.Context, event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		s.logger.Printf("audit: marshal event: %v", err)
		return
	}
	if err := s.conn.Publish(s.subject, raw); err != nil {
		s.logger.Printf("audit: publish to %s failed: %v", s.subject, err)
	}
}
