// Package app boots the storefront: it connects the stores, builds the
// services and hands the HTTP kernel its controllers.
//
//	a, err := app.Boot(ctx)
//	if err != nil { ... }
//	defer a.Close(context.Background())
//	err = a.Serve(ctx, ":"+config.AppPort())
package app

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

const thumbnailWorkers = 4

// Application holds every long-lived dependency of a running storefront.
type Application struct {
	Mongo    *mongo.Client
	Cache    *cache.Store
	Disks    *storage.Manager
	Jobs     *workerpool.Pool
	Tokens   *auth.Tokens
	Catalog  *services.CatalogService
	Accounts *services.AuthService
	Carts    *services.CartService
	Uploads  *services.UploadService
	Importer *services.ImportService

	logSink *logger.MongoHandler
}

// Boot loads configuration and connects everything. Redis and S3 are
// optional; MongoDB is not.
func Boot(ctx context.Context) (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &Application{}

	if uri := config.LogMongoURI(); uri != "" {
		sink, err := logger.AttachMongo(uri, config.MongoDatabase())
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			a.logSink = sink
		}
	}

	client, db, err := database.Connect(ctx)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.Mongo = client

	products := repositories.NewProductRepository(db)
	users := repositories.NewUserRepository(db)
	if err := products.EnsureIndexes(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	if err := products.SyncCounter(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}

	a.Cache, err = cache.Connect(ctx)
	if err != nil {
		logger.Warn("listing cache disabled", "error", err)
		a.Cache = nil
	}

	a.Disks = storage.Connect(ctx)
	disk, err := a.Disks.Default()
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}

	a.Jobs = workerpool.New(thumbnailWorkers).OnPanic(func(r any) {
		metrics.ThumbnailJobs.WithLabelValues("failed").Inc()
		logger.Error("thumbnail job panicked", "panic", r)
	})

	a.Tokens = auth.FromConfig()
	a.Catalog = services.NewCatalogService(products, a.Cache, config.PopularCategory())
	a.Accounts = services.NewAuthService(users, a.Tokens)
	a.Carts = services.NewCartService(users, a.Catalog, config.CartSlots())
	a.Uploads = services.NewUploadService(disk, a.Jobs, config.ThumbnailWidth())
	a.Importer = services.NewImportService(a.Catalog)

	logger.Info("storefront booted",
		"database", config.MongoDatabase(),
		"cache", a.Cache != nil,
		"disk", config.StorageDisk(),
	)
	return a, nil
}

// Controllers wires the services into the HTTP controllers.
func (a *Application) Controllers() routes.Controllers {
	return routes.Controllers{
		Products: controllers.NewProductController(a.Catalog),
		Auth:     controllers.NewAuthController(a.Accounts),
		Cart:     controllers.NewCartController(a.Carts),
		Upload:   controllers.NewUploadController(a.Uploads),
		Tokens:   a.Tokens,
		Images:   a.Disks.Local().FileSystem("images"),
	}
}

// Handler is the complete HTTP handler.
func (a *Application) Handler() http.Handler {
	return kernel.NewHTTPKernel(a.Controllers())
}

// Close drains background work and releases connections. It is safe on a
// partially booted Application.
func (a *Application) Close(ctx context.Context) {
	if a.Jobs != nil {
		a.Jobs.Shutdown()
	}
	if err := a.Cache.Close(); err != nil {
		logger.Warn("cache close failed", "error", err)
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
	if a.logSink != nil {
		a.logSink.Close()
	}
}
