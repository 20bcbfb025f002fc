package app

import (
	"context"
	"strings"

	"github.com/EXP1111/eclipse/internal/domain"
)

type InventoryRepository interface {
	FindProductByName(ctx context.Context, name string) (domain.Product, error)
	InsertKeys(ctx context.Context, productID int64, keyTexts []string) (int, error)
	DeleteAvailableKeys(ctx context.Context, productID int64, limit int) (int, error)
	CountAvailable(ctx context.Context, productID int64) (int, error)
	ListStockSummary(ctx context.Context) ([]domain.StockSummary, error)
}

// Refresher is poked after every stock-mutating operation so the storefront
// projection catches up. The poke must never block or fail the mutation.
type Refresher interface {
	Trigger()
}

type InventoryService struct {
	repo    InventoryRepository
	refresh Refresher
}

func NewInventoryService(repo InventoryRepository, opts ...InventoryServiceOption) *InventoryService {
	svc := &InventoryService{repo: repo}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type InventoryServiceOption func(*InventoryService)

// WithInventoryRefresher pokes r after add and remove operations.
func WithInventoryRefresher(r Refresher) InventoryServiceOption {
	return func(s *InventoryService) {
		s.refresh = r
	}
}

// AddStock splits rawKeys into lines, trims each, drops empty ones and
// inserts the rest as available keys. An input with no surviving lines is a
// no-op returning 0.
func (s *InventoryService) AddStock(ctx context.Context, productName, rawKeys string) (int, error) {
	if productName == "" {
		return 0, domain.ErrProductNameRequired
	}

	product, err := s.repo.FindProductByName(ctx, productName)
	if err != nil {
		return 0, err
	}

	keys := splitKeyLines(rawKeys)
	if len(keys) == 0 {
		return 0, nil
	}

	added, err := s.repo.InsertKeys(ctx, product.ID, keys)
	if err != nil {
		return 0, err
	}
	s.stockChanged()
	return added, nil
}

// RemoveStock deletes up to count available keys for the product, oldest
// first, and returns how many were actually removed.
func (s *InventoryService) RemoveStock(ctx context.Context, productName string, count int) (int, error) {
	if productName == "" {
		return 0, domain.ErrProductNameRequired
	}
	if count <= 0 {
		return 0, domain.ErrInvalidQuantity
	}

	product, err := s.repo.FindProductByName(ctx, productName)
	if err != nil {
		return 0, err
	}

	removed, err := s.repo.DeleteAvailableKeys(ctx, product.ID, count)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.stockChanged()
	}
	return removed, nil
}

func (s *InventoryService) CountAvailable(ctx context.Context, productName string) (int, error) {
	if productName == "" {
		return 0, domain.ErrProductNameRequired
	}
	product, err := s.repo.FindProductByName(ctx, productName)
	if err != nil {
		return 0, err
	}
	return s.repo.CountAvailable(ctx, product.ID)
}

func (s *InventoryService) ListStockSummary(ctx context.Context) ([]domain.StockSummary, error) {
	return s.repo.ListStockSummary(ctx)
}

func (s *InventoryService) stockChanged() {
	if s.refresh != nil {
		s.refresh.Trigger()
	}
}

func splitKeyLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	keys := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		keys = append(keys, line)
	}
	return keys
}
