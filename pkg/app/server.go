package app

import (
	"context"

	"github.com/shashiranjanraj/storefront/internal/server"
)

// Serve listens on addr until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, addr string) error {
	return server.Start(ctx, addr, a.Handler())
}
