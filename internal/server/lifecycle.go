// Package server runs the host's long-lived services and tears them down in
// reverse order on quit, failure, or a termination signal.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Start blocks until the service is
// finished or stopped.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function, if any.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle starts services in registration order and stops them in reverse.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

type exit struct {
	name string
	err  error
}

// Run starts all services and blocks until one of them returns, ctx is
// cancelled, or SIGINT/SIGTERM arrives. Then every service is stopped.
//
// Postcondition: Returns the error of the service whose exit ended the run,
// or nil for a clean exit, signal, or cancellation.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	exits := make(chan exit, len(services))
	for _, ns := range services {
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			err := ns.service.Start()
			exits <- exit{name: ns.name, err: err}
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case ex := <-exits:
		if ex.err != nil {
			l.logger.Error("service failed, shutting down",
				zap.String("service", ex.name),
				zap.Error(ex.err),
			)
			runErr = fmt.Errorf("service %s: %w", ex.name, ex.err)
		} else {
			l.logger.Info("service finished, shutting down", zap.String("service", ex.name))
		}
	case <-sigCtx.Done():
		if ctx.Err() != nil {
			l.logger.Info("context cancelled, shutting down")
		} else {
			l.logger.Info("received signal, shutting down")
		}
	}

	l.shutdown(services)
	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return runErr
}

func (l *Lifecycle) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Debug("all services stopped", zap.Duration("shutdown_elapsed", time.Since(shutdownStart)))
}
