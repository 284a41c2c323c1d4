package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JNickson/cluster-health-api/internal/nodes"
	"github.com/JNickson/cluster-health-api/internal/pods"
	"github.com/JNickson/cluster-health-api/internal/usage"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer

	err := Write(&buf, []string{"Namespace", "Pod Name"}, [][]string{
		{"default", "p1"},
		{"shop", "api, v2"},
	})
	require.NoError(t, err)
	require.Equal(t, "Namespace,Pod Name\ndefault,p1\nshop,\"api, v2\"\n", buf.String())
}

func TestWriteHeaderOnly(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, nodes.Columns, nil))
	require.Equal(t, "Node Name,Status,CPU Capacity,CPU Usage,Memory Capacity,Memory Usage\n", buf.String())
}

func TestWriteRejectsRaggedRows(t *testing.T) {
	var buf bytes.Buffer

	err := Write(&buf, []string{"a", "b"}, [][]string{{"1"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 0 has 1 fields")
}

func TestWriteFileBadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.csv"), []string{"a"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "create report")
}

func TestGeneratorRun(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "node_health_report.csv")
	podsPath := filepath.Join(dir, "pod_health_report.csv")

	g := NewGenerator(
		fakeNodes{records: []nodes.Record{{
			Name:           "node1",
			Status:         nodes.StatusReady,
			CPUCapacity:    "4",
			CPUUsage:       usage.Available("250n"),
			MemoryCapacity: "16Gi",
			MemoryUsage:    usage.Unavailable[string](),
		}}},
		fakePods{records: []pods.Record{{
			Namespace:      "default",
			Name:           "p1",
			Status:         "Failed",
			CPUUsageNanos:  usage.Unavailable[int64](),
			MemoryUsageKiB: usage.Unavailable[int64](),
		}}},
		nodesPath,
		podsPath,
	)

	require.NoError(t, g.Run(context.Background()))

	nodeCSV, err := os.ReadFile(nodesPath)
	require.NoError(t, err)
	require.Equal(t,
		"Node Name,Status,CPU Capacity,CPU Usage,Memory Capacity,Memory Usage\n"+
			"node1,Ready,4,250n,16Gi,unavailable\n",
		string(nodeCSV),
	)

	podCSV, err := os.ReadFile(podsPath)
	require.NoError(t, err)
	require.Equal(t,
		"Namespace,Pod Name,Status,CPU Usage (nanos),Memory Usage (KiB)\n"+
			"default,p1,Failed,unavailable,unavailable\n",
		string(podCSV),
	)
}

func TestGeneratorStopsOnListFailure(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "nodes.csv")

	g := NewGenerator(
		fakeNodes{},
		fakePods{err: errors.New("failed to list pods: forbidden")},
		nodesPath,
		filepath.Join(dir, "pods.csv"),
	)

	err := g.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "forbidden")

	_, statErr := os.Stat(nodesPath)
	require.True(t, os.IsNotExist(statErr))
}

type fakeNodes struct {
	records []nodes.Record
	err     error
}

func (f fakeNodes) FetchNodes(context.Context) ([]nodes.Record, error) {
	return f.records, f.err
}

type fakePods struct {
	records []pods.Record
	err     error
}

func (f fakePods) FetchPods(context.Context) ([]pods.Record, error) {
	return f.records, f.err
}
