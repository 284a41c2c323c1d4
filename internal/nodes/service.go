package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JNickson/cluster-health-api/internal/observability"
	"github.com/JNickson/cluster-health-api/internal/usage"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

const collectorName = "nodes"

type Service interface {
	FetchNodes(ctx context.Context) ([]Record, error)
}

type NodeService struct {
	kubeClient    kubernetes.Interface
	metricsClient metricsclient.Interface
	recorder      *observability.Recorder
}

func NewNodeService(
	kubeClient kubernetes.Interface,
	metricsClient metricsclient.Interface,
	recorder *observability.Recorder,
) *NodeService {
	return &NodeService{
		kubeClient:    kubeClient,
		metricsClient: metricsClient,
		recorder:      recorder,
	}
}

// FetchNodes lists every node and looks up its live usage one node at a
// time. Only the listing can fail; usage lookups degrade to unavailable.
func (s *NodeService) FetchNodes(ctx context.Context) (out []Record, err error) {
	started := time.Now()
	defer func() { s.recorder.ObserveCollection(collectorName, started, err) }()

	list, err := s.kubeClient.CoreV1().
		Nodes().
		List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	out = make([]Record, 0, len(list.Items))

	for i := range list.Items {
		n := &list.Items[i]
		out = append(out, mapNode(n, s.fetchUsage(ctx, n.Name)))
	}

	slog.Debug("nodes collected", "count", len(out), "duration", time.Since(started))

	return out, nil
}

func (s *NodeService) fetchUsage(ctx context.Context, name string) Usage {
	u, err := s.lookupUsage(ctx, name)
	if err != nil {
		slog.Debug("node usage unavailable", "node", name, "error", err)
		s.recorder.ObserveUsageLookup(collectorName, false)
		return unavailableUsage()
	}

	s.recorder.ObserveUsageLookup(collectorName, true)
	return u
}

func (s *NodeService) lookupUsage(ctx context.Context, name string) (Usage, error) {
	m, err := s.metricsClient.MetricsV1beta1().
		NodeMetricses().
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return Usage{}, fmt.Errorf("get node metrics: %w", err)
	}

	cpu, ok := m.Usage[v1.ResourceCPU]
	if !ok {
		return Usage{}, fmt.Errorf("node metrics for %s have no cpu usage", name)
	}

	mem, ok := m.Usage[v1.ResourceMemory]
	if !ok {
		return Usage{}, fmt.Errorf("node metrics for %s have no memory usage", name)
	}

	return Usage{
		CPU:    usage.Available(cpu.String()),
		Memory: usage.Available(mem.String()),
	}, nil
}

func mapNode(n *v1.Node, u Usage) Record {
	return Record{
		Name:           n.Name,
		Status:         nodeStatus(n.Status.Conditions),
		CPUCapacity:    capacity(n.Status.Capacity, v1.ResourceCPU),
		CPUUsage:       u.CPU,
		MemoryCapacity: capacity(n.Status.Capacity, v1.ResourceMemory),
		MemoryUsage:    u.Memory,
	}
}

func nodeStatus(conditions []v1.NodeCondition) Status {
	for _, c := range conditions {
		if c.Type == v1.NodeReady && c.Status == v1.ConditionTrue {
			return StatusReady
		}
	}
	return StatusNotReady
}

func capacity(list v1.ResourceList, name v1.ResourceName) string {
	q, ok := list[name]
	if !ok {
		return usage.Sentinel
	}
	return q.String()
}
