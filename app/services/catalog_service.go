package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

const (
	newCollectionsSize = 8
	popularSize        = 4

	keyAllProducts    = "products:all"
	keyNewCollections = "products:new"
	keyPopularPrefix  = "products:popular:"
	keyGeneration     = "products:gen"
)

// ProductStore is the persistence the catalog needs.
type ProductStore interface {
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, p *models.Product) error
	DeleteByID(ctx context.Context, id int64) (*models.Product, error)
	All(ctx context.Context) ([]models.Product, error)
	Latest(ctx context.Context, n int) ([]models.Product, error)
	ByCategory(ctx context.Context, category string, n int) ([]models.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// CatalogService owns the product catalog. Listings are read through the
// cache under generation-stamped keys; any write bumps the generation so
// no listing loaded before the write is served after it.
type CatalogService struct {
	store           ProductStore
	cache           *cache.Store
	popularCategory string
	now             func() time.Time
}

// NewCatalogService builds the service. cache may be nil.
func NewCatalogService(store ProductStore, c *cache.Store, popularCategory string) *CatalogService {
	return &CatalogService{
		store:           store,
		cache:           c,
		popularCategory: popularCategory,
		now:             time.Now,
	}
}

// AddProduct assigns the next id, stamps the creation time and stores the
// product as available.
func (s *CatalogService) AddProduct(ctx context.Context, in models.NewProduct) (*models.Product, error) {
	id, err := s.store.NextID(ctx)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		ID:        id,
		Name:      in.Name,
		Image:     in.Image,
		Category:  in.Category,
		NewPrice:  float64(in.NewPrice),
		OldPrice:  float64(in.OldPrice),
		Date:      s.now().UTC().Truncate(time.Millisecond),
		Available: true,
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("product added", "id", p.ID, "name", p.Name)
	return p, nil
}

// RemoveProduct deletes the product with the given id. Removing an id that
// does not exist is not an error; the returned product is then nil.
func (s *CatalogService) RemoveProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		s.invalidate(ctx)
		logger.WithCtx(ctx).Info("product removed", "id", id, "name", p.Name)
	}
	return p, nil
}

// Exists reports whether id names a catalog product.
func (s *CatalogService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.store.Exists(ctx, id)
}

// ListProducts returns every product in creation order.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.cached(ctx, keyAllProducts, func() ([]models.Product, error) {
		return s.store.All(ctx)
	})
}

// ListNewCollections returns the most recently added products.
func (s *CatalogService) ListNewCollections(ctx context.Context) ([]models.Product, error) {
	return s.cached(ctx, keyNewCollections, func() ([]models.Product, error) {
		return s.store.Latest(ctx, newCollectionsSize)
	})
}

// ListPopular returns the first products of the featured category.
func (s *CatalogService) ListPopular(ctx context.Context) ([]models.Product, error) {
	return s.cached(ctx, keyPopularPrefix+s.popularCategory, func() ([]models.Product, error) {
		return s.store.ByCategory(ctx, s.popularCategory, popularSize)
	})
}

func (s *CatalogService) cached(ctx context.Context, key string, load func() ([]models.Product, error)) ([]models.Product, error) {
	// The generation is read before loading: a write racing with load
	// bumps it, so whatever load returns is parked under a retired key.
	gen, err := s.cache.Version(ctx, keyGeneration)
	if err != nil {
		logger.WithCtx(ctx).Warn("cache generation read failed", "error", err)
		return s.load(key, load)
	}
	versioned := cache.Versioned(key, gen)

	var products []models.Product
	if s.cache.Get(ctx, versioned, &products) {
		return products, nil
	}

	products, err = s.load(key, load)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, versioned, products); err != nil {
		logger.WithCtx(ctx).Warn("cache set failed", "key", versioned, "error", err)
	}
	return products, nil
}

func (s *CatalogService) load(key string, load func() ([]models.Product, error)) ([]models.Product, error) {
	products, err := load()
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", key, err)
	}
	return products, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, keyGeneration); err != nil {
		logger.WithCtx(ctx).Warn("cache invalidation failed", "error", err)
	}
}
