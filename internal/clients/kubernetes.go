package clients

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JNickson/cluster-health-api/internal/config"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

// NewKubeConfig resolves cluster credentials: an explicit kubeconfig path
// (or path list), then the in-cluster service account, then
// $HOME/.kube/config.
func NewKubeConfig(c config.Config) (*rest.Config, error) {
	cfg, err := loadRestConfig(c.Kubeconfig)
	if err != nil {
		return nil, err
	}

	cfg.Timeout = c.RequestTimeout
	cfg.QPS = c.QPS
	cfg.Burst = c.Burst

	return cfg, nil
}

func loadRestConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		// Same list semantics as KUBECONFIG: files are merged, first one wins.
		rules := &clientcmd.ClientConfigLoadingRules{
			Precedence: filepath.SplitList(kubeconfig),
		}

		cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).
			ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfig, err)
		}

		slog.Info("Using kubeconfig", "path", kubeconfig)
		return cfg, nil
	}

	// Try in-cluster first
	cfg, err := rest.InClusterConfig()
	if err == nil {
		slog.Info("Using in-cluster Kubernetes config")
		return cfg, nil
	}

	slog.Warn("In-cluster config failed, falling back to kubeconfig",
		"error", err,
		"host", os.Getenv("KUBERNETES_SERVICE_HOST"),
		"port", os.Getenv("KUBERNETES_SERVICE_PORT"),
	)

	// Fallback to local kubeconfig
	home, _ := os.UserHomeDir()
	kubeconfig = filepath.Join(home, ".kube", "config")

	cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	slog.Info("Using local kubeconfig", "path", kubeconfig)
	return cfg, nil
}

func NewKubeClient(cfg *rest.Config) (kubernetes.Interface, error) {
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kube client: %w", err)
	}

	slog.Info("Kubernetes client initialised")
	return client, nil
}

func NewMetricsClient(cfg *rest.Config) (metricsclient.Interface, error) {
	client, err := metricsclient.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	slog.Info("Metrics client initialised")
	return client, nil
}
