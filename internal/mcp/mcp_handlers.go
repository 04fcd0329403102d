package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultSnapshotLimit = 10

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	runner  ReportRunner
	mgr     contract.CacheManager
}

func (h *toolHandler) handleGenerateReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.runner == nil {
		return mcp.NewToolResultError("report generation is not configured"), nil
	}
	tr, err := contract.ParseTimeRange(request.GetString("time_range", string(h.baseCfg.TimeRange)))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}
	targetUser := request.GetString("target_user", h.baseCfg.TargetUser)

	state := h.runner.Run(ctx, fmt.Sprintf("%s report", tr), tr, targetUser)
	return jsonResult(state)
}

func (h *toolHandler) handleListSnapshots(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultSnapshotLimit)
	if limit < 1 {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be at least 1 (received %d)", limit)), nil
	}

	var store contract.ReportStore
	if h.mgr != nil {
		store = h.mgr.GetReportStore()
	}
	if store == nil {
		return mcp.NewToolResultError("report store is not initialized"), nil
	}

	records, err := store.RecentSnapshots(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load snapshots: %v", err)), nil
	}
	if records == nil {
		records = []schema.SnapshotRecord{}
	}
	return jsonResult(records)
}

func (h *toolHandler) handleGetMetricDefinitions(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group := request.GetString("group", "")
	defs := schema.MetricDefinitions()
	if group != "" {
		filtered := make([]schema.MetricDefinition, 0, len(defs))
		for _, d := range defs {
			if d.Group == group {
				filtered = append(filtered, d)
			}
		}
		if len(filtered) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("unknown metric group '%s'", group)), nil
		}
		defs = filtered
	}
	return jsonResult(defs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
