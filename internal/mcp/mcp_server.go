// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ReportRunner runs one report and returns its final state.
// core.Pipeline satisfies it.
type ReportRunner interface {
	Run(ctx context.Context, command string, timeRange schema.TimeRange, targetUser string) *schema.PipelineState
}

// NewMCPServer initializes and configures the DevPulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, runner ReportRunner, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"DevPulse Report Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		runner:  runner,
		mgr:     mgr,
	}

	// --- 1. Tool: generate_report ---
	s.AddTool(mcp.NewTool("generate_report",
		mcp.WithDescription("Harvest recent activity and produce a team performance report with DORA metrics, anomalies and a narrative."),
		mcp.WithString("time_range", mcp.Description("Reporting window. Defaults to 'weekly'."), mcp.Enum("daily", "weekly", "monthly")),
		mcp.WithString("target_user", mcp.Description("Developer login or name to focus the narrative on.")),
	), h.handleGenerateReport)

	// --- 2. Tool: list_snapshots ---
	s.AddTool(mcp.NewTool("list_snapshots",
		mcp.WithDescription("List the most recent stored metrics snapshots, oldest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of snapshots to return. Defaults to 10.")),
	), h.handleListSnapshots)

	// --- 3. Tool: get_metric_definitions ---
	s.AddTool(mcp.NewTool("get_metric_definitions",
		mcp.WithDescription("Describe every metric in a report, with its formula and unit."),
		mcp.WithString("group", mcp.Description("Only return metrics of this group."),
			mcp.Enum(schema.TeamGroup, schema.DoraGroup, schema.CodeHealthGroup, schema.VelocityGroup, schema.AnomalyGroup)),
	), h.handleGetMetricDefinitions)

	return s
}

// StartMCPServer starts the DevPulse MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, runner ReportRunner, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, runner, mgr)
	return server.ServeStdio(s)
}
