package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JNickson/cluster-health-api/internal/config"
	"github.com/JNickson/cluster-health-api/internal/report"
	"github.com/JNickson/cluster-health-api/internal/runtime"
	"github.com/JNickson/cluster-health-api/internal/utils"
	"github.com/urfave/cli/v3"
)

type runFunc func(ctx context.Context, cfg config.Config) error

func main() {
	loaded, envErr := config.LoadEnvFile()

	setupLogger(startupLevel(os.Getenv("LOG_LEVEL")))

	if envErr != nil {
		slog.Error("failed to load env file", "error", envErr)
		os.Exit(1)
	}
	if len(loaded) > 0 {
		slog.Info("loaded env file", "paths", loaded)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(serve, writeReports).Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// startupLevel picks the level used until flags are parsed; a bad value
// falls back to info and is rejected later by config validation.
func startupLevel(raw string) slog.Level {
	level, err := config.ParseLevel(raw)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func setupLogger(level slog.Level) {
	slog.SetDefault(utils.NewLogger(level))
}

func newCommand(serveFn, reportFn runFunc) *cli.Command {
	defaults := config.Default()

	return &cli.Command{
		Name:   "cluster-health",
		Usage:  "Report Kubernetes node and pod health with live resource usage",
		Action: withConfig(serveFn),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kubeconfig",
				Usage:   "Path to a kubeconfig file (default: in-cluster, then ~/.kube/config)",
				Sources: cli.EnvVars("KUBECONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   defaults.LogLevel,
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.DurationFlag{
				Name:    "request-timeout",
				Value:   defaults.RequestTimeout,
				Usage:   "Timeout applied to each API server and metrics API call",
				Sources: cli.EnvVars("REQUEST_TIMEOUT"),
			},
			&cli.FloatFlag{
				Name:    "kube-qps",
				Value:   float64(defaults.QPS),
				Usage:   "Client-side request rate to the API server",
				Sources: cli.EnvVars("KUBE_QPS"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   defaults.Port,
				Usage:   "HTTP listen port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.IntFlag{
				Name:    "kube-burst",
				Value:   defaults.Burst,
				Usage:   "Client-side request burst to the API server",
				Sources: cli.EnvVars("KUBE_BURST"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve node and pod health over HTTP",
				Action: withConfig(serveFn),
			},
			{
				Name:   "report",
				Usage:  "Collect once and write node and pod health as CSV files",
				Action: withConfig(reportFn),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "nodes-out",
						Value:   defaults.NodesReport,
						Usage:   "Node report path",
						Sources: cli.EnvVars("NODES_REPORT"),
					},
					&cli.StringFlag{
						Name:    "pods-out",
						Value:   defaults.PodsReport,
						Usage:   "Pod report path",
						Sources: cli.EnvVars("PODS_REPORT"),
					},
				},
			},
		},
	}
}

func withConfig(fn runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := configFromCommand(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		level, _ := config.ParseLevel(cfg.LogLevel)
		setupLogger(level)

		return fn(ctx, cfg)
	}
}

// configFromCommand starts from the defaults and overrides whatever the
// invoked command knows about.
func configFromCommand(cmd *cli.Command) config.Config {
	cfg := config.Default()

	cfg.Kubeconfig = cmd.String("kubeconfig")
	cfg.LogLevel = cmd.String("log-level")
	cfg.RequestTimeout = cmd.Duration("request-timeout")
	cfg.QPS = float32(cmd.Float("kube-qps"))
	cfg.Burst = cmd.Int("kube-burst")
	cfg.Port = cmd.Int("port")

	if cmd.IsSet("nodes-out") {
		cfg.NodesReport = cmd.String("nodes-out")
	}
	if cmd.IsSet("pods-out") {
		cfg.PodsReport = cmd.String("pods-out")
	}

	return cfg
}

func serve(ctx context.Context, cfg config.Config) error {
	services, err := runtime.NewServices(cfg)
	if err != nil {
		return err
	}

	return runtime.New(cfg, services).Start(ctx)
}

func writeReports(ctx context.Context, cfg config.Config) error {
	services, err := runtime.NewServices(cfg)
	if err != nil {
		return err
	}

	return report.NewGenerator(services.Nodes, services.Pods, cfg.NodesReport, cfg.PodsReport).Run(ctx)
}
