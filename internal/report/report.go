// Package report writes node and pod records as CSV files with a header row.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JNickson/cluster-health-api/internal/nodes"
	"github.com/JNickson/cluster-health-api/internal/pods"
)

func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("row %d has %d fields, header has %d", i, len(row), len(header))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile creates or truncates path and writes the report into it.
func WriteFile(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report %s: %w", path, cerr)
		}
	}()

	if err := Write(f, header, rows); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

// Generator collects nodes then pods and writes one CSV for each.
type Generator struct {
	nodes     nodes.Service
	pods      pods.Service
	nodesPath string
	podsPath  string
}

func NewGenerator(nodeService nodes.Service, podService pods.Service, nodesPath, podsPath string) *Generator {
	return &Generator{
		nodes:     nodeService,
		pods:      podService,
		nodesPath: nodesPath,
		podsPath:  podsPath,
	}
}

func (g *Generator) Run(ctx context.Context) error {
	nodeRecords, err := g.nodes.FetchNodes(ctx)
	if err != nil {
		return err
	}

	podRecords, err := g.pods.FetchPods(ctx)
	if err != nil {
		return err
	}

	if err := WriteFile(g.nodesPath, nodes.Columns, nodeRows(nodeRecords)); err != nil {
		return err
	}
	slog.Info("report saved", "path", g.nodesPath, "rows", len(nodeRecords))

	if err := WriteFile(g.podsPath, pods.Columns, podRows(podRecords)); err != nil {
		return err
	}
	slog.Info("report saved", "path", g.podsPath, "rows", len(podRecords))

	return nil
}

func nodeRows(records []nodes.Record) [][]string {
	out := make([][]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Values())
	}
	return out
}

func podRows(records []pods.Record) [][]string {
	out := make([][]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Values())
	}
	return out
}
