package pods

import (
	"strconv"

	"github.com/JNickson/cluster-health-api/internal/usage"
)

// Record is a point-in-time view of one pod. Status is the phase reported
// by the API server.
type Record struct {
	Namespace      string              `json:"Namespace"`
	Name           string              `json:"Pod Name"`
	Status         string              `json:"Status"`
	CPUUsageNanos  usage.Result[int64] `json:"CPU Usage (nanos)"`
	MemoryUsageKiB usage.Result[int64] `json:"Memory Usage (KiB)"`
}

var Columns = []string{
	"Namespace",
	"Pod Name",
	"Status",
	"CPU Usage (nanos)",
	"Memory Usage (KiB)",
}

func (r Record) Values() []string {
	return []string{
		r.Namespace,
		r.Name,
		r.Status,
		formatUsage(r.CPUUsageNanos),
		formatUsage(r.MemoryUsageKiB),
	}
}

func formatUsage(r usage.Result[int64]) string {
	v, ok := r.Get()
	if !ok {
		return usage.Sentinel
	}
	return strconv.FormatInt(v, 10)
}

// ContainerUsage holds the raw quantity strings of one container as served
// by the metrics API, e.g. "100n" and "200Ki".
type ContainerUsage struct {
	Name   string `json:"name"`
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
}

type Usage struct {
	CPUNanos  usage.Result[int64] `json:"cpuNanos"`
	MemoryKiB usage.Result[int64] `json:"memoryKiB"`
}

func unavailableUsage() Usage {
	return Usage{
		CPUNanos:  usage.Unavailable[int64](),
		MemoryKiB: usage.Unavailable[int64](),
	}
}
