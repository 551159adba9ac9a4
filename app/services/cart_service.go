package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

var (
	ErrInvalidItem = errors.New("itemId must be a non-negative integer")
	ErrUnknownItem = errors.New("no product found with the given itemId")
)

// CartStore holds each user's cart.
type CartStore interface {
	IncrementCartItem(ctx context.Context, userID string, item int64) error
	DecrementCartItem(ctx context.Context, userID string, item int64) (bool, error)
	Cart(ctx context.Context, userID string) (models.Cart, error)
}

// ItemCatalog answers whether an item id names a product.
type ItemCatalog interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type CartService struct {
	carts   CartStore
	catalog ItemCatalog
	slots   int
}

// NewCartService builds the service. slots is the number of zero-filled
// entries GetCart always reports.
func NewCartService(carts CartStore, catalog ItemCatalog, slots int) *CartService {
	return &CartService{carts: carts, catalog: catalog, slots: slots}
}

// AddToCart adds one unit of an existing product.
func (s *CartService) AddToCart(ctx context.Context, userID string, itemID int64) error {
	if itemID < 0 {
		metrics.CartOperations.WithLabelValues("add", "rejected").Inc()
		return ErrInvalidItem
	}

	ok, err := s.catalog.Exists(ctx, itemID)
	if err != nil {
		metrics.CartOperations.WithLabelValues("add", "error").Inc()
		return err
	}
	if !ok {
		metrics.CartOperations.WithLabelValues("add", "rejected").Inc()
		return ErrUnknownItem
	}

	if err := s.carts.IncrementCartItem(ctx, userID, itemID); err != nil {
		metrics.CartOperations.WithLabelValues("add", "error").Inc()
		return err
	}

	metrics.CartOperations.WithLabelValues("add", "ok").Inc()
	logger.WithCtx(ctx).Debug("cart item added", "user_id", userID, "item", itemID)
	return nil
}

// RemoveFromCart removes one unit if the quantity is positive and is a
// no-op otherwise. Products no longer in the catalog can still be removed.
func (s *CartService) RemoveFromCart(ctx context.Context, userID string, itemID int64) error {
	if itemID < 0 {
		metrics.CartOperations.WithLabelValues("remove", "rejected").Inc()
		return ErrInvalidItem
	}

	removed, err := s.carts.DecrementCartItem(ctx, userID, itemID)
	if err != nil {
		metrics.CartOperations.WithLabelValues("remove", "error").Inc()
		return err
	}

	metrics.CartOperations.WithLabelValues("remove", "ok").Inc()
	logger.WithCtx(ctx).Debug("cart item removed", "user_id", userID, "item", itemID, "changed", removed)
	return nil
}

// GetCart returns the full slot mapping for the user.
func (s *CartService) GetCart(ctx context.Context, userID string) (map[string]int, error) {
	cart, err := s.carts.Cart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.Dense(s.slots), nil
}
