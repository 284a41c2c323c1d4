package nodes

import "github.com/JNickson/cluster-health-api/internal/usage"

type Status string

const (
	StatusReady    Status = "Ready"
	StatusNotReady Status = "Not Ready"
)

// Record is a point-in-time view of one node. Capacities are the quantity
// strings reported by the API server.
type Record struct {
	Name           string               `json:"Node Name"`
	Status         Status               `json:"Status"`
	CPUCapacity    string               `json:"CPU Capacity"`
	CPUUsage       usage.Result[string] `json:"CPU Usage"`
	MemoryCapacity string               `json:"Memory Capacity"`
	MemoryUsage    usage.Result[string] `json:"Memory Usage"`
}

// Columns is the CSV header, in the same order as Values.
var Columns = []string{
	"Node Name",
	"Status",
	"CPU Capacity",
	"CPU Usage",
	"Memory Capacity",
	"Memory Usage",
}

func (r Record) Values() []string {
	return []string{
		r.Name,
		string(r.Status),
		r.CPUCapacity,
		r.CPUUsage.String(),
		r.MemoryCapacity,
		r.MemoryUsage.String(),
	}
}

type Usage struct {
	CPU    usage.Result[string] `json:"cpu"`
	Memory usage.Result[string] `json:"memory"`
}

func unavailableUsage() Usage {
	return Usage{
		CPU:    usage.Unavailable[string](),
		Memory: usage.Unavailable[string](),
	}
}
