package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JNickson/cluster-health-api/internal/clients"
	"github.com/JNickson/cluster-health-api/internal/config"
	"github.com/JNickson/cluster-health-api/internal/handlers"
	"github.com/JNickson/cluster-health-api/internal/nodes"
	"github.com/JNickson/cluster-health-api/internal/observability"
	"github.com/JNickson/cluster-health-api/internal/pods"
)

const shutdownTimeout = 5 * time.Second

// Services is everything the HTTP and CSV front ends read from.
type Services struct {
	Nodes    nodes.Service
	Pods     pods.Service
	Ready    handlers.ReadyProbe
	Recorder *observability.Recorder
}

// NewServices connects to the cluster described by cfg and builds both
// collectors on top of the same clients.
func NewServices(cfg config.Config) (*Services, error) {
	restConfig, err := clients.NewKubeConfig(cfg)
	if err != nil {
		return nil, err
	}

	kubeClient, err := clients.NewKubeClient(restConfig)
	if err != nil {
		return nil, err
	}

	metricsClient, err := clients.NewMetricsClient(restConfig)
	if err != nil {
		return nil, err
	}

	recorder := observability.NewRecorder()

	return &Services{
		Nodes:    nodes.NewNodeService(kubeClient, metricsClient, recorder),
		Pods:     pods.NewPodService(kubeClient, metricsClient, recorder),
		Recorder: recorder,
		Ready: func(context.Context) error {
			if _, err := kubeClient.Discovery().ServerVersion(); err != nil {
				return fmt.Errorf("api server unreachable: %w", err)
			}
			return nil
		},
	}, nil
}

type App struct {
	services *Services
	server   *http.Server
}

func New(cfg config.Config, services *Services) *App {
	app := &App{services: services}

	app.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Handler(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app
}

// Start serves until ctx is cancelled, then shuts the server down.
func (a *App) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func (a *App) Handler() http.Handler {
	rec := a.services.Recorder

	nodesHandler := handlers.NodesHandler(a.services.Nodes)
	podsHandler := handlers.PodsHandler(a.services.Pods)

	api := http.NewServeMux()
	api.HandleFunc("GET /nodes", handlers.Instrument("/api/v1/nodes", rec, nodesHandler))
	api.HandleFunc("GET /pods", handlers.Instrument("/api/v1/pods", rec, podsHandler))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handlers.Instrument("/", rec, handlers.RootHandler()))
	mux.HandleFunc("GET /nodes", handlers.Instrument("/nodes", rec, nodesHandler))
	mux.HandleFunc("GET /pods", handlers.Instrument("/pods", rec, podsHandler))
	mux.HandleFunc("GET /healthz", handlers.HealthHandler())
	mux.HandleFunc("GET /readyz", handlers.ReadyHandler(a.services.Ready))
	mux.Handle("GET /metrics", rec.Handler())
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api))

	return handlers.WithRequestID(handlers.WithCORS(mux))
}
