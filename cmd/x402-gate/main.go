// Command x402-gate is a reverse proxy that charges for access to an upstream
// service with the x402 payment gate.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nacorid/x402-gate"
	"github.com/nacorid/x402-gate/events/amqppub"
	x402http "github.com/nacorid/x402-gate/http"
	"github.com/nacorid/x402-gate/metrics"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("gate server failed", zap.Error(err))
	}
}

func run(cfg *Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gateConfig, publisher, err := buildGateConfig(cfg, logger, registry)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close event publisher", zap.Error(err))
			}
		}()
	}

	router, err := newRouter(cfg, gateConfig, registry)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gate listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("upstream", cfg.UpstreamURL.String()),
			zap.String("network", gateConfig.NetworkID()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildGateConfig(cfg *Config, logger *zap.Logger, reg prometheus.Registerer) (x402http.Config, *amqppub.Publisher, error) {
	recorder, err := metrics.NewPrometheusRecorder(reg)
	if err != nil {
		return x402http.Config{}, nil, err
	}

	timeouts := x402.DefaultTimeouts.
		WithVerifyTimeout(cfg.VerifyTimeout).
		WithSettleTimeout(cfg.SettleTimeout)

	gateConfig := x402http.Config{
		Amount:                   cfg.Amount,
		PayTo:                    cfg.PayTo,
		Paths:                    cfg.Paths,
		Description:              cfg.Description,
		MimeType:                 cfg.MimeType,
		MaxDeadlineSeconds:       cfg.MaxDeadlineSeconds,
		FacilitatorURL:           cfg.FacilitatorURL,
		Network:                  cfg.Network,
		Testnet:                  cfg.Testnet,
		Resource:                 cfg.Resource,
		FacilitatorAuthorization: cfg.FacilitatorAuthorization,
		Timeouts:                 timeouts,
		Logger:                   logger.Named("gate"),
		Metrics:                  recorder,
	}

	if cfg.PaywallHTMLFile != "" {
		html, err := os.ReadFile(cfg.PaywallHTMLFile)
		if err != nil {
			return x402http.Config{}, nil, fmt.Errorf("read paywall: %w", err)
		}
		gateConfig.CustomPaywallHTML = string(html)
	}

	var publisher *amqppub.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = amqppub.Dial(cfg.AMQPURL, cfg.AMQPQueue, amqppub.WithLogger(logger.Named("events")))
		if err != nil {
			return x402http.Config{}, nil, err
		}
		gateConfig.OnPaymentEvent = publisher.Callback
	}

	return gateConfig, publisher, nil
}

func newRouter(cfg *Config, gateConfig x402http.Config, gatherer prometheus.Gatherer) (http.Handler, error) {
	gate, err := x402http.NewX402Middleware(gateConfig)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(cfg.UpstreamURL)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(gate)
		r.Handle("/*", proxy)
	})

	return r, nil
}
