package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/EXP1111/eclipse/internal/audit"
	"github.com/EXP1111/eclipse/internal/clock"
	"github.com/EXP1111/eclipse/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FindProductByName(ctx context.Context, name string) (domain.Product, error)
	ReserveKey(ctx context.Context, productID int64, soldAt time.Time) (domain.StockKey, error)
	CreateOrder(ctx context.Context, order domain.Order) (int64, error)
}

// DeliveryGateway is the slice of the platform gateway the fulfillment flow
// needs: a direct message for the primary path and a channel post for the
// fallback.
type DeliveryGateway interface {
	SendDirect(ctx context.Context, userID, content string) error
	SendMessage(ctx context.Context, channelID, content string) (string, error)
}

type DeliveryPath string

const (
	// DeliveryDirect means the key reached the buyer's private messages.
	DeliveryDirect DeliveryPath = "direct"
	// DeliveryFallback means the key was posted into the fallback channel.
	DeliveryFallback DeliveryPath = "fallback"
	// DeliveryNone means both attempts failed; the order stands and the key
	// is handed over out-of-band from the persisted record.
	DeliveryNone DeliveryPath = "none"
)

type DeliveryOutcome struct {
	Order domain.Order
	Key   domain.StockKey
	Path  DeliveryPath
}

type OrderService struct {
	repo    OrderRepository
	gw      DeliveryGateway
	clock   clock.Clock
	auditor audit.Recorder
	logger  *log.Logger
	refresh Refresher
}

func NewOrderService(repo OrderRepository, gw DeliveryGateway, clk clock.Clock, opts ...OrderServiceOption) *OrderService {
	svc := &OrderService{
		repo:    repo,
		gw:      gw,
		clock:   clk,
		auditor: audit.Nop{},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OrderServiceOption func(*OrderService)

func WithAuditor(a audit.Recorder) OrderServiceOption {
	return func(s *OrderService) {
		s.auditor = a
	}
}

func WithOrderLogger(logger *log.Logger) OrderServiceOption {
	return func(s *OrderService) {
		s.logger = logger
	}
}

// WithOrderRefresher pokes r after a successful sale.
func WithOrderRefresher(r Refresher) OrderServiceOption {
	return func(s *OrderService) {
		s.refresh = r
	}
}

type DeliverInput struct {
	BuyerID           string
	ProductName       string
	FallbackChannelID string
}

// Deliver sells one key of the named product to the buyer. The reservation
// and the order row commit as one transaction; delivery attempts happen
// after the commit and never undo the sale.
func (s *OrderService) Deliver(ctx context.Context, in DeliverInput) (DeliveryOutcome, error) {
	if in.BuyerID == "" {
		return DeliveryOutcome{}, domain.ErrBuyerRequired
	}
	if in.ProductName == "" {
		return DeliveryOutcome{}, domain.ErrProductNameRequired
	}

	now := s.clock.Now()
	var (
		product domain.Product
		key     domain.StockKey
		order   domain.Order
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		product, err = s.repo.FindProductByName(txCtx, in.ProductName)
		if err != nil {
			return err
		}

		key, err = s.repo.ReserveKey(txCtx, product.ID, now)
		if err != nil {
			return err
		}

		order = domain.Order{
			UserID:      in.BuyerID,
			ProductID:   product.ID,
			KeyID:       key.ID,
			Status:      domain.OrderStatusDelivered,
			DeliveredAt: now,
		}
		order.ID, err = s.repo.CreateOrder(txCtx, order)
		return err
	})
	if err != nil {
		return DeliveryOutcome{}, err
	}

	path := s.attemptDelivery(ctx, in, product, key)

	s.auditor.Record(ctx, audit.Event{
		Kind:    audit.KindOrderDelivered,
		OrderID: order.ID,
		UserID:  in.BuyerID,
		Product: product.Name,
		At:      now,
	})
	if s.refresh != nil {
		s.refresh.Trigger()
	}

	return DeliveryOutcome{Order: order, Key: key, Path: path}, nil
}

func (s *OrderService) attemptDelivery(ctx context.Context, in DeliverInput, product domain.Product, key domain.StockKey) DeliveryPath {
	direct := fmt.Sprintf("Your %s key: %s", product.Name, key.KeyText)
	if err := s.gw.SendDirect(ctx, in.BuyerID, direct); err == nil {
		return DeliveryDirect
	} else {
		s.logger.Printf("order %s: direct delivery to %s failed: %v", product.Name, in.BuyerID, err)
	}

	if in.FallbackChannelID == "" {
		return DeliveryNone
	}

	fallback := fmt.Sprintf("<@%s>, DM failed. Here is your key: %s", in.BuyerID, key.KeyText)
	if _, err := s.gw.SendMessage(ctx, in.FallbackChannelID, fallback); err != nil {
		s.logger.Printf("order %s: fallback delivery to channel %s failed: %v", product.Name, in.FallbackChannelID, err)
		return DeliveryNone
	}
	return DeliveryFallback
}
