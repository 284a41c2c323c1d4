package pods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JNickson/cluster-health-api/internal/observability"
	"github.com/JNickson/cluster-health-api/internal/usage"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

const collectorName = "pods"

var errNoContainers = errors.New("pod metrics contain no containers")

type Service interface {
	FetchPods(ctx context.Context) ([]Record, error)
}

type PodService struct {
	kubeClient    kubernetes.Interface
	metricsClient metricsclient.Interface
	recorder      *observability.Recorder
}

func NewPodService(
	kubeClient kubernetes.Interface,
	metricsClient metricsclient.Interface,
	recorder *observability.Recorder,
) *PodService {
	return &PodService{
		kubeClient:    kubeClient,
		metricsClient: metricsClient,
		recorder:      recorder,
	}
}

// FetchPods lists pods in every namespace and sums per-container usage for
// each, one pod at a time.
func (s *PodService) FetchPods(ctx context.Context) (out []Record, err error) {
	started := time.Now()
	defer func() { s.recorder.ObserveCollection(collectorName, started, err) }()

	list, err := s.kubeClient.CoreV1().
		Pods("").
		List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	out = make([]Record, 0, len(list.Items))

	for i := range list.Items {
		p := &list.Items[i]
		out = append(out, mapPod(p, s.fetchUsage(ctx, p.Namespace, p.Name)))
	}

	slog.Debug("pods collected", "count", len(out), "duration", time.Since(started))

	return out, nil
}

func (s *PodService) fetchUsage(ctx context.Context, namespace, name string) Usage {
	containers, err := s.lookupContainers(ctx, namespace, name)
	if err != nil {
		slog.Debug("pod usage unavailable", "namespace", namespace, "pod", name, "error", err)
		s.recorder.ObserveUsageLookup(collectorName, false)
		return unavailableUsage()
	}

	u, err := sumContainers(containers)
	if err != nil {
		slog.Debug("pod usage malformed", "namespace", namespace, "pod", name, "error", err)
		s.recorder.ObserveUsageLookup(collectorName, false)
		return unavailableUsage()
	}

	s.recorder.ObserveUsageLookup(collectorName, true)
	return u
}

func (s *PodService) lookupContainers(ctx context.Context, namespace, name string) ([]ContainerUsage, error) {
	m, err := s.metricsClient.MetricsV1beta1().
		PodMetricses(namespace).
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get pod metrics: %w", err)
	}

	return containerUsages(m), nil
}

func containerUsages(m *metricsv1beta1.PodMetrics) []ContainerUsage {
	out := make([]ContainerUsage, 0, len(m.Containers))
	for _, c := range m.Containers {
		cu := ContainerUsage{Name: c.Name}
		if q, ok := c.Usage[v1.ResourceCPU]; ok {
			cu.CPU = q.String()
		}
		if q, ok := c.Usage[v1.ResourceMemory]; ok {
			cu.Memory = q.String()
		}
		out = append(out, cu)
	}
	return out
}

// sumContainers strips the "n" and "Ki" suffixes from every container's
// usage and adds the integers up. Any malformed value fails the whole pod.
func sumContainers(containers []ContainerUsage) (Usage, error) {
	if len(containers) == 0 {
		return Usage{}, errNoContainers
	}

	cpu := make([]string, 0, len(containers))
	mem := make([]string, 0, len(containers))
	for _, c := range containers {
		cpu = append(cpu, c.CPU)
		mem = append(mem, c.Memory)
	}

	cpuTotal, err := usage.SumSuffixed(cpu, usage.NanoSuffix)
	if err != nil {
		return Usage{}, fmt.Errorf("cpu: %w", err)
	}

	memTotal, err := usage.SumSuffixed(mem, usage.KibiSuffix)
	if err != nil {
		return Usage{}, fmt.Errorf("memory: %w", err)
	}

	return Usage{
		CPUNanos:  usage.Available(cpuTotal),
		MemoryKiB: usage.Available(memTotal),
	}, nil
}

func mapPod(p *v1.Pod, u Usage) Record {
	phase := string(p.Status.Phase)
	if phase == "" {
		phase = string(v1.PodUnknown)
	}

	return Record{
		Namespace:      p.Namespace,
		Name:           p.Name,
		Status:         phase,
		CPUUsageNanos:  u.CPUNanos,
		MemoryUsageKiB: u.MemoryKiB,
	}
}
