package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"recap/internal/config"
	"recap/internal/ingest"
	"recap/internal/logging"
	"recap/internal/queue"
	"recap/internal/workflow"
)

// Daemon coordinates background processing and enforces single-instance
// execution through a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	drop     *ingest.DropWatcher

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	QueueDBPath  string
	LockFilePath string
	Queue        queue.HealthSummary
	LastError    string
}

// New constructs a daemon. The drop watcher is optional.
func New(cfg *config.Config, store *queue.Store, wf *workflow.Manager, drop *ingest.DropWatcher, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		workflow: wf,
		drop:     drop,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, d.logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches background processing.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another recap daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		d.releaseLock()
		d.cancel()
		d.ctx, d.cancel = nil, nil
		return fmt.Errorf("start workflow: %w", err)
	}

	if d.drop != nil {
		go func() {
			if err := d.drop.Run(d.ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("drop watcher stopped", "error", err)
			}
		}()
	}

	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.workflow.Stop()
			d.releaseLock()
			d.cancel()
			d.ctx, d.cancel = nil, nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("recap daemon started", "lock", d.lockPath)
	return nil
}

// Stop halts background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if d.api != nil {
		d.api.stop()
	}
	d.releaseLock()
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("recap daemon stopped")
}

// Close stops the daemon and closes the underlying store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

func (d *Daemon) releaseLock() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("could not release daemon lock", "error", err)
	}
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if health, err := d.store.Health(ctx); err == nil {
		status.Queue = health
	}
	if err := d.workflow.LastError(); err != nil {
		status.LastError = err.Error()
	}
	return status
}
