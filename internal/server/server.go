// Package server boots the process-wide dependencies and runs the HTTP and
// gRPC listeners with their background workers until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	grpcserver "github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

const shutdownTimeout = 10 * time.Second

// App holds the booted dependencies shared by the server and CLI commands.
type App struct {
	DB      *gorm.DB
	Cache   cache.Store
	Storage *storage.Manager
	Queue   *queue.Manager
	Events  *event.Bus
	Hub     *ws.Hub
	Streams *sse.Broker

	pool *workerpool.Pool
}

// Boot loads config, connects the database and wires jobs and listeners.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	logger.Setup()

	db, err := database.Connect()
	if err != nil {
		return nil, err
	}

	disks, err := storage.FromConfig(ctx)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	a := &App{
		DB:      db,
		Cache:   cache.Open(ctx),
		Storage: disks,
		Queue:   openQueue(ctx, db),
		Hub:     ws.NewHub(),
		Streams: sse.NewBroker(),
		pool:    workerpool.New(config.Int("EVENT_WORKERS", 4)),
	}
	a.Events = event.NewBus(a.pool)

	a.Queue.Register(jobs.SendOrderConfirmationName, jobs.NewSendOrderConfirmation(db, mail.FromConfig()))
	listeners.Register(a.Events, a.Queue, a.Hub, a.Streams)
	return a, nil
}

func openQueue(ctx context.Context, db *gorm.DB) *queue.Manager {
	opts := []queue.Option{queue.WithFailedStore(db)}
	if config.QueueDriver() == "redis" {
		client, err := cache.Connect(ctx)
		if err == nil {
			return queue.New(queue.NewRedisDriver(client), opts...)
		}
		logger.Warn("queue: redis unavailable, using memory driver", "error", err)
	}
	return queue.New(queue.NewMemoryDriver(), opts...)
}

// Kernel builds the HTTP kernel on the booted dependencies.
func (a *App) Kernel() *kernel.HTTPKernel {
	d := kernel.Deps{
		DB:      a.DB,
		Cache:   a.Cache,
		Disk:    a.Storage.Default(),
		Events:  a.Events,
		Hub:     a.Hub,
		Streams: a.Streams,
	}
	if local, ok := a.Storage.Local(); ok {
		d.Files = local.Handler()
	}
	return kernel.NewHTTPKernel(d)
}

// Close drains the event pool and releases the database and log sink.
func (a *App) Close() {
	a.pool.Shutdown()
	if err := database.Close(a.DB); err != nil {
		logger.Warn("database: close failed", "error", err)
	}
	logger.Close()
}

// Start runs the server until SIGINT or SIGTERM.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Serve(ctx)
}

// Serve runs HTTP, gRPC, the websocket hub, queue workers and the scheduler
// until ctx ends, then shuts them down in reverse order.
func (a *App) Serve(ctx context.Context) error {
	workers, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	background := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(workers)
		}()
	}

	background(a.Hub.Run)
	background(func(ctx context.Context) { a.Queue.Work(ctx, config.Int("QUEUE_WORKERS", 2)) })
	background(a.scheduler().Run)

	rpc, err := grpcserver.Start(config.GRPCPort(), func(ctx context.Context) error {
		return a.DB.WithContext(ctx).Exec("SELECT 1").Error
	})
	if err != nil {
		cancelWorkers()
		wg.Wait()
		return err
	}

	srv := newHTTPServer(":"+config.AppPort(), a.Kernel().Handler(), a.Streams)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http: listening", "addr", srv.Addr, "grpc", rpc.Addr().String(), "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("http: shutdown", "error", shutdownErr)
	}
	rpc.Stop()
	cancelWorkers()
	wg.Wait()
	logger.Info("server: stopped")

	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// newHTTPServer builds the API listener. Open event streams are ended when
// shutdown starts so they do not hold it until the timeout.
func newHTTPServer(addr string, h http.Handler, streams *sse.Broker) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if streams != nil {
		srv.RegisterOnShutdown(streams.Close)
	}
	return srv
}

func (a *App) scheduler() *schedule.Scheduler {
	s := schedule.New()
	s.Every(config.Duration("QUEUE_RETRY_INTERVAL", time.Hour), "queue.retry-failed", func(ctx context.Context) error {
		_, err := a.Queue.RetryFailed(ctx)
		return err
	})
	return s
}
