package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/EXP1111/eclipse/internal/audit"
	"github.com/EXP1111/eclipse/internal/clock"
	"github.com/EXP1111/eclipse/internal/domain"
	"github.com/EXP1111/eclipse/internal/gateway"
)

type TicketRepository interface {
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	CloseTicket(ctx context.Context, channelID string, closedAt time.Time) (bool, error)
}

// TicketGateway is the slice of the platform gateway the ticket lifecycle
// needs.
type TicketGateway interface {
	CreateChannel(ctx context.Context, req gateway.CreateChannelRequest) (string, error)
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

const defaultCloseDelay = 5 * time.Second

type TicketService struct {
	repo       TicketRepository
	gw         TicketGateway
	clock      clock.Clock
	auditor    audit.Recorder
	logger     *log.Logger
	categoryID string
	staffRole  string
	closeDelay time.Duration
}

func NewTicketService(repo TicketRepository, gw TicketGateway, clk clock.Clock, categoryID string, opts ...TicketServiceOption) *TicketService {
	svc := &TicketService{
		repo:       repo,
		gw:         gw,
		clock:      clk,
		auditor:    audit.Nop{},
		logger:     log.Default(),
		categoryID: categoryID,
		closeDelay: defaultCloseDelay,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type TicketServiceOption func(*TicketService)

// WithStaffRole grants the role access to every ticket channel.
func WithStaffRole(roleID string) TicketServiceOption {
	return func(s *TicketService) {
		s.staffRole = roleID
	}
}

// WithCloseDelay overrides the grace period before a closed ticket's channel
// is destroyed. A non-positive delay deletes the channel immediately.
func WithCloseDelay(d time.Duration) TicketServiceOption {
	return func(s *TicketService) {
		s.closeDelay = d
	}
}

func WithTicketAuditor(a audit.Recorder) TicketServiceOption {
	return func(s *TicketService) {
		s.auditor = a
	}
}

func WithTicketLogger(logger *log.Logger) TicketServiceOption {
	return func(s *TicketService) {
		s.logger = logger
	}
}

type OpenTicketInput struct {
	RequesterID   string
	RequesterName string
	Category      domain.TicketCategory
}

// Open creates a private channel for the requester, records the ticket and
// posts the welcome message. The welcome post is best-effort; the ticket
// stands once the channel and row exist.
func (s *TicketService) Open(ctx context.Context, in OpenTicketInput) (string, error) {
	if s.categoryID == "" {
		return "", domain.ErrTicketingNotConfigured
	}

	viewers := []string{in.RequesterID}
	if s.staffRole != "" {
		viewers = append(viewers, s.staffRole)
	}

	channelID, err := s.gw.CreateChannel(ctx, gateway.CreateChannelRequest{
		Name:      strings.ToLower(fmt.Sprintf("ticket-%s-%s", in.Category, in.RequesterName)),
		ParentID:  s.categoryID,
		ViewerIDs: viewers,
	})
	if err != nil {
		return "", fmt.Errorf("create ticket channel: %w", err)
	}

	if err := s.repo.CreateTicket(ctx, domain.Ticket{
		ChannelID: channelID,
		UserID:    in.RequesterID,
		Category:  in.Category,
		Status:    domain.TicketStatusOpen,
	}); err != nil {
		return "", err
	}

	welcome := fmt.Sprintf("Welcome <@%s>, a staff member will assist you shortly.", in.RequesterID)
	if _, err := s.gw.SendMessage(ctx, channelID, welcome); err != nil {
		s.logger.Printf("ticket %s: welcome message failed: %v", channelID, err)
	}

	s.auditor.Record(ctx, audit.Event{
		Kind:      audit.KindTicketOpened,
		UserID:    in.RequesterID,
		Category:  string(in.Category),
		ChannelID: channelID,
		At:        s.clock.Now(),
	})
	return channelID, nil
}

// Close marks the ticket closed, notifies the channel and destroys it after
// the grace period. Closing a ticket that is not open reports
// ErrTicketNotFound and leaves the channel alone, so a double close never
// deletes twice.
func (s *TicketService) Close(ctx context.Context, channelID, closerID string) error {
	closed, err := s.repo.CloseTicket(ctx, channelID, s.clock.Now())
	if err != nil {
		return err
	}
	if !closed {
		return domain.ErrTicketNotFound
	}

	notice := fmt.Sprintf("Closing ticket in %d seconds.", int(s.closeDelay/time.Second))
	if _, err := s.gw.SendMessage(ctx, channelID, notice); err != nil {
		s.logger.Printf("ticket %s: close notice failed: %v", channelID, err)
	}

	s.auditor.Record(ctx, audit.Event{
		Kind:      audit.KindTicketClosed,
		UserID:    closerID,
		ChannelID: channelID,
		At:        s.clock.Now(),
	})

	if s.closeDelay <= 0 {
		s.deleteChannel(channelID)
		return nil
	}
	time.AfterFunc(s.closeDelay, func() {
		s.deleteChannel(channelID)
	})
	return nil
}

func (s *TicketService) deleteChannel(channelID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.gw.DeleteChannel(ctx, channelID); err != nil {
		s.logger.Printf("ticket %s: channel delete failed: %v", channelID, err)
	}
}
