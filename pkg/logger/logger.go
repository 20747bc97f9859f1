// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the request-scoped logger installed by middleware.Logger,
// so every line written while serving a request carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", order.ID)
//	// → time=... level=INFO msg="order placed" request_id=7f0c… order_id=12
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
)

var (
	mu sync.RWMutex
	L  *slog.Logger

	sink *MongoHandler
)

func init() {
	L = New(os.Stdout, config.IsProduction())
	slog.SetDefault(L)
}

// New builds a JSON logger at INFO for production, a text logger at DEBUG
// otherwise.
func New(w io.Writer, production bool) *slog.Logger {
	return slog.New(baseHandler(w, production))
}

func baseHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Setup (re)builds the base logger from config. When LOG_MONGO_URI is set,
// records are also shipped to MongoDB; a failing Mongo connection is logged
// and ignored.
func Setup() {
	handler := baseHandler(os.Stdout, config.IsProduction())

	if uri := config.LogMongoURI(); uri != "" {
		mh, err := NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection())
		if err != nil {
			slog.New(handler).Warn("logger: mongo sink disabled", "error", err)
		} else {
			mu.Lock()
			sink = mh
			mu.Unlock()
			handler = NewMultiHandler(handler, mh)
		}
	}

	SetDefault(slog.New(handler))
}

// SetDefault swaps the base logger.
func SetDefault(l *slog.Logger) {
	mu.Lock()
	L = l
	mu.Unlock()
	slog.SetDefault(l)
}

// Close flushes the Mongo sink, if any.
func Close() {
	mu.Lock()
	s := sink
	sink = nil
	mu.Unlock()
	if s != nil {
		s.Close()
	}
}

func base() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return L
}

type ctxKey struct{}

// WithCtx returns the logger stored by InjectLogger, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return base()
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { base().Debug(msg, args...) }
func Info(msg string, args ...any)  { base().Info(msg, args...) }
func Warn(msg string, args ...any)  { base().Warn(msg, args...) }
func Error(msg string, args ...any) { base().Error(msg, args...) }
