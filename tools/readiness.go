package tools

import (
	"context"
	"sort"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// instanceStatus is the per-pooled-instance view of the readiness tool's
// output, one entry per project root currently warm in the pool.
type instanceStatus struct {
	ProjectRoot string `json:"project_root"`
	Command     string `json:"command,omitempty"`
	Connected   bool   `json:"connected"`
	Status      string `json:"status"`
	LastError   string `json:"last_error,omitempty"`
}

// poolStatus is the readiness tool's overall shape: where the original
// bridge reported per-language-server status across several clients, this
// one reports per-project-root status across the pool's warm instances,
// since the pool (not a fixed client map) is this bridge's unit of
// connectivity.
type poolStatus struct {
	Ready     bool             `json:"ready"`
	State     string           `json:"state"`
	Instances []instanceStatus `json:"instances"`
	Pool      lsp.Stats        `json:"pool"`
}

// LSPStatusTool reports pool occupancy and per-instance connectivity, so a
// calling agent can tell a cold-start delay apart from a genuine failure.
func LSPStatusTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("lsp_status",
			mcp.WithDescription("Report language server pool readiness and per-project connectivity"),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult(buildPoolStatus(b))
		},
	}
}

func buildPoolStatus(b *bridge.MCPLSPBridge) poolStatus {
	instances := b.Pool().Instances()
	status := poolStatus{
		State:     "starting",
		Instances: make([]instanceStatus, 0, len(instances)),
		Pool:      b.Pool().GetStats(),
	}

	if len(instances) == 0 {
		return status
	}

	sort.Slice(instances, func(i, j int) bool { return instances[i].ProjectRoot < instances[j].ProjectRoot })

	connectedCount := 0
	anyError := false
	anyStarting := false

	for _, inst := range instances {
		client := inst.Client()
		if client == nil {
			status.Instances = append(status.Instances, instanceStatus{ProjectRoot: inst.ProjectRoot, Status: "restarting"})
			anyStarting = true
			continue
		}
		metrics := client.GetMetrics()
		statusStr := lsp.ClientStatus(metrics.GetStatus()).String()
		connected := metrics.IsConnected()
		if connected {
			connectedCount++
		}
		if statusStr == "disconnected" || !connected {
			anyError = true
		}
		if statusStr == "connecting" || statusStr == "restarting" {
			anyStarting = true
		}
		status.Instances = append(status.Instances, instanceStatus{
			ProjectRoot: inst.ProjectRoot,
			Command:     metrics.GetCommand(),
			Connected:   connected,
			Status:      statusStr,
			LastError:   metrics.GetLastError(),
		})
	}

	switch {
	case anyError:
		status.State = "error"
	case anyStarting || connectedCount == 0:
		status.State = "starting"
	default:
		status.State = "ready"
	}
	status.Ready = connectedCount > 0 && !anyError
	return status
}

// CheckReadyOrReturn gives other tool handlers a cheap readiness gate: if
// no instance is connected yet, it returns a structured "not ready" result
// instead of letting the caller block on a cold bootstrap. Tool handlers in
// this package call Pool().Get directly instead, which bootstraps
// on demand; this helper exists for a future interactive client that wants
// to poll readiness before issuing its first positional tool call.
func CheckReadyOrReturn(b *bridge.MCPLSPBridge) (*mcp.CallToolResult, bool) {
	status := buildPoolStatus(b)
	if status.Ready {
		return nil, true
	}
	result, _ := jsonResult(status)
	return result, false
}
