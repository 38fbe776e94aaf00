package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/growthlab/marshalgo/core"
	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// ClientFactory builds a portal client from a per-call configuration. The
// factory keeps the handlers independent of the HTTP layer for testing.
type ClientFactory func(cfg *contract.Config) contract.PortalClient

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg       *contract.Config
	clientFactory ClientFactory
	mgr           contract.CacheManager
}

// sessionFor clones the base configuration, applies per-call overrides and
// opens a program session against the portal.
func (h *toolHandler) sessionFor(ctx context.Context, request mcp.CallToolRequest) (*core.ProgramList, *contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("program", ""); p != "" {
		cfg.Program = p
	}

	now := time.Now()
	if s := request.GetString("start", ""); s != "" {
		t, err := contract.ParseMarshalTime(s, now)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date: %w", err)
		}
		cfg.StartTime = t
	}
	if e := request.GetString("end", ""); e != "" {
		t, err := contract.ParseMarshalTime(e, now)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date: %w", err)
		}
		cfg.EndTime = t
	}
	if cfg.StartTime.After(cfg.EndTime) {
		return nil, nil, fmt.Errorf("start date %s is after end date %s",
			cfg.StartTime.Format(contract.DateTimeFormat), cfg.EndTime.Format(contract.DateTimeFormat))
	}

	if s := request.GetString("show_saved", ""); s != "" {
		show := schema.ShowSaved(s)
		if _, ok := schema.ValidShowSaved[show]; !ok {
			return nil, nil, fmt.Errorf("invalid show_saved filter %q", s)
		}
		cfg.ShowSaved = show
	}

	session, err := core.NewProgramList(ctx, cfg, h.clientFactory(cfg), h.mgr)
	if err != nil {
		return nil, nil, err
	}
	return session, cfg, nil
}

func (h *toolHandler) handleGetSavedSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, cfg, err := h.sessionFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session setup failed: %v", err)), nil
	}

	var trange *core.TimeRange
	if request.GetString("start", "") != "" || request.GetString("end", "") != "" {
		trange = &core.TimeRange{Start: cfg.StartTime, End: cfg.EndTime}
	}

	sources, err := session.GetSavedSources(ctx, trange)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("source listing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(sources, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, _, err := h.sessionFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session setup failed: %v", err)), nil
	}

	candidates, err := session.GetCandidates(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("candidate query failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(candidates, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetLightcurve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	session, _, err := h.sessionFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session setup failed: %v", err)), nil
	}

	lc, err := session.GetLightcurve(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lightcurve fetch failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(lc, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFitTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	session, _, err := h.sessionFor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session setup failed: %v", err)), nil
	}

	ft, err := session.FitTable(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fitting-table conversion failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(ft, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
