// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Marshal MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, clientFactory ClientFactory, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"GROWTH Marshal Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:       baseCfg,
		clientFactory: clientFactory,
		mgr:           mgr,
	}

	// --- 1. Tool: get_saved_sources ---
	s.AddTool(mcp.NewTool("get_saved_sources",
		mcp.WithDescription("List the saved sources of a Marshal science program, optionally filtered by save date."),
		mcp.WithString("program", mcp.Description("Science program name (defaults to the configured program).")),
		mcp.WithString("start", mcp.Description("Only return sources saved at or after this date (e.g. '2026-02-01' or '2 weeks ago').")),
		mcp.WithString("end", mcp.Description("Only return sources saved before this date.")),
	), h.handleGetSavedSources)

	// --- 2. Tool: get_candidates ---
	s.AddTool(mcp.NewTool("get_candidates",
		mcp.WithDescription("Query the scanning page of a Marshal science program over a time window, slicing and retrying as needed."),
		mcp.WithString("program", mcp.Description("Science program name.")),
		mcp.WithString("start", mcp.Description("Start of the query window.")),
		mcp.WithString("end", mcp.Description("End of the query window.")),
		mcp.WithString("show_saved", mcp.Description("Scanning-page filter."), mcp.Enum("none", "selected", "notSelected", "onlySelected", "onlyNotSelected", "all")),
	), h.handleGetCandidates)

	// --- 3. Tool: get_lightcurve ---
	s.AddTool(mcp.NewTool("get_lightcurve",
		mcp.WithDescription("Download the deduplicated photometry of a saved source."),
		mcp.WithString("name", mcp.Description("ZTF name of the source."), mcp.Required()),
		mcp.WithString("program", mcp.Description("Science program name.")),
	), h.handleGetLightcurve)

	// --- 4. Tool: get_fit_table ---
	s.AddTool(mcp.NewTool("get_fit_table",
		mcp.WithDescription("Convert the photometry of a saved source into a fitting-ready flux table."),
		mcp.WithString("name", mcp.Description("ZTF name of the source."), mcp.Required()),
		mcp.WithString("program", mcp.Description("Science program name.")),
	), h.handleGetFitTable)

	return s
}

// StartMCPServer starts the Marshal MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, clientFactory ClientFactory, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, clientFactory, mgr)
	return server.ServeStdio(s)
}
