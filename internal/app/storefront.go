package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/EXP1111/eclipse/internal/domain"
)

// SettingStorefrontMessageID tracks which platform message currently shows
// the storefront so a refresh edits it in place.
const SettingStorefrontMessageID = "storefront_message_id"

type StorefrontRepository interface {
	ListStockSummary(ctx context.Context) ([]domain.StockSummary, error)
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// PublishGateway is the slice of the platform gateway the projector needs.
type PublishGateway interface {
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) error
}

// Storefront maintains the derived product/price/availability summary
// message. It is a read-side projection: every failure here is logged and
// swallowed so it can never fail the mutation that triggered it.
type Storefront struct {
	repo      StorefrontRepository
	settings  SettingsStore
	gw        PublishGateway
	channelID string
	storeName string
	currency  string
	logger    *log.Logger
	interval  time.Duration
	trigger   chan struct{}
}

func NewStorefront(repo StorefrontRepository, settings SettingsStore, gw PublishGateway, channelID, storeName, currency string, interval time.Duration, logger *log.Logger) *Storefront {
	if logger == nil {
		logger = log.Default()
	}
	return &Storefront{
		repo:      repo,
		settings:  settings,
		gw:        gw,
		channelID: channelID,
		storeName: storeName,
		currency:  currency,
		logger:    logger,
		interval:  interval,
		trigger:   make(chan struct{}, 1),
	}
}

// Trigger requests a refresh without blocking. A poke while one is already
// queued is dropped; the pending refresh will see the newer state anyway.
func (s *Storefront) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes on the configured interval and on every Trigger until ctx is
// cancelled.
func (s *Storefront) Run(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Printf("storefront: refresh failed: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.trigger:
		}
		if err := s.Refresh(ctx); err != nil {
			s.logger.Printf("storefront: refresh failed: %v", err)
		}
	}
}

// Render returns the current storefront view as text.
func (s *Storefront) Render(ctx context.Context) (string, error) {
	summaries, err := s.repo.ListStockSummary(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Storefront\n", s.storeName)
	b.WriteString("Live stock and prices. Open a ticket to buy.\n")
	for _, row := range summaries {
		fmt.Fprintf(&b, "\n%s\nPrice: %s %s\nStock: %d\n",
			row.ProductName, FormatPrice(row.PriceCents), s.currency, row.Available)
	}
	return b.String(), nil
}

// Refresh recomputes the summary and edits the published message, or posts a
// new one when none exists or the old one is gone, recording its id.
func (s *Storefront) Refresh(ctx context.Context) error {
	if s.channelID == "" {
		return nil
	}

	content, err := s.Render(ctx)
	if err != nil {
		return fmt.Errorf("render storefront: %w", err)
	}

	messageID, found, err := s.settings.Get(ctx, SettingStorefrontMessageID)
	if err != nil {
		return fmt.Errorf("load storefront message id: %w", err)
	}
	if found {
		if err := s.gw.EditMessage(ctx, s.channelID, messageID, content); err == nil {
			return nil
		} else {
			s.logger.Printf("storefront: edit of message %s failed, republishing: %v", messageID, err)
		}
	}

	sentID, err := s.gw.SendMessage(ctx, s.channelID, content)
	if err != nil {
		return fmt.Errorf("publish storefront: %w", err)
	}
	if err := s.settings.Set(ctx, SettingStorefrontMessageID, sentID); err != nil {
		return fmt.Errorf("record storefront message id: %w", err)
	}
	return nil
}

// FormatPrice renders minor currency units as a decimal string.
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
