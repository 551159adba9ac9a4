// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the request-scoped logger that middleware.Logger stores in
// the context, so every line a handler writes carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product added", "id", p.ID)
//	// → time=... level=INFO msg="product added" request_id=a1b2c3d4 id=7
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/storefront/config"
)

var L *slog.Logger

func init() {
	L = slog.New(stdoutHandler(config.AppEnv()))
	slog.SetDefault(L)
}

func stdoutHandler(env string) slog.Handler {
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// AttachMongo fans every record out to a MongoDB collection in addition to
// stdout. The returned MongoHandler must be closed on shutdown.
func AttachMongo(uri, db string) (*MongoHandler, error) {
	mh, err := NewMongoHandler(uri, db, "logs")
	if err != nil {
		return nil, err
	}
	L = slog.New(NewMultiHandler(stdoutHandler(config.AppEnv()), mh))
	slog.SetDefault(L)
	return mh, nil
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the logger stored by InjectLogger, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
