// Command shuttle is a terminal playground for the shuttle dispatchers. Every key press is an
// event on the loop; posting work from a key handler keeps the screen live while the work runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alitto/shuttle"
	"github.com/alitto/shuttle/internal/config"
	"github.com/alitto/shuttle/metrics"
	"github.com/alitto/shuttle/term"
	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "shuttle:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	logger, logCloser, err := cfg.Log.Logger()
	if err != nil {
		return err
	}
	defer logCloser.Close()

	thread, err := cfg.Worker.WorkerThread()
	if err != nil {
		return err
	}
	defer thread.Stop()

	filter, err := cfg.Pump.Filter()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}

	app := newApp(screen, logger)
	loop := shuttle.NewLoop(
		shuttle.WithEventHandler(app.handle),
		shuttle.WithLoopLogger(logger))
	app.loop = loop
	app.worker = shuttle.NewWorker(loop,
		shuttle.WithWorkerThread(thread),
		shuttle.WithEventPump(loop.Pump(filter)),
		shuttle.WithLogger(logger))
	app.concurrent = shuttle.NewConcurrentWorker(loop,
		shuttle.WithEventPump(loop.Pump(filter)),
		shuttle.WithLogger(logger))
	app.async = shuttle.NewAsyncWorker(loop, shuttle.WithLogger(logger))

	source := term.NewSource(screen, loop)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		// Leaving the loop, for any reason, ends the program
		defer cancel()
		defer source.Stop()

		source.Start()
		loop.InvokeLater(app.paint)

		err := loop.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.Metrics.Addr != "" {
		registry := prometheus.NewRegistry()
		err := errors.Join(
			metrics.RegisterLoop(registry, loop),
			metrics.RegisterDispatcher(registry, "worker", app.worker),
			metrics.RegisterDispatcher(registry, "concurrent", app.concurrent),
			metrics.RegisterDispatcher(registry, "async", app.async))
		if err != nil {
			cancel()
			group.Wait()
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		group.Go(func() error {
			logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})

		group.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	return group.Wait()
}
