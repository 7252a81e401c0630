package appbootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stpaul-crime/api"
	"stpaul-crime/config"
	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"

	"golang.org/x/sync/errgroup"
)

// OpenStore opens the configured database and applies migrations. Any
// failure is returned so the process can exit before serving.
func OpenStore(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.ApplyMigrations(ctx, db, store.DialectFor(cfg), logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Run serves HTTP until ctx is cancelled or the listener fails, then drains
// the server, stops workers and closes the database.
func Run(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) error {
	db, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	rt, err := composeRuntime(cfg, db, logger)
	if err != nil {
		return err
	}
	srv := api.NewServer(cfg, rt.serverDeps, logger)
	return serve(ctx, cfg, srv, rt.workers, logger)
}

func serve(ctx context.Context, cfg *config.AppConfig, srv *api.Server, workers []api.BackgroundWorker, logger *utils.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w.StartWithContext(gctx)
	}
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if logger != nil {
			logger.Printf("shutting down (timeout %s)", timeout)
		}
		var firstErr error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			firstErr = fmt.Errorf("http shutdown: %w", err)
		}
		for _, w := range workers {
			if err := w.StopWithContext(shutdownCtx); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("stop worker: %w", err)
			}
		}
		return firstErr
	})
	return g.Wait()
}
