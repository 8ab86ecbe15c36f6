// ABOUTME: MCP resource implementations for the health-to-calendar engine.
// ABOUTME: Provides healthcal://synced, healthcal://today, and healthcal://categories.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// healthcal://synced - recently synced ranges
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "healthcal://synced",
		Name:        "Synced Ranges",
		Description: "Last 10 synced date ranges, most recent first",
		MIMEType:    "application/json",
	}, s.handleSyncedResource)

	// healthcal://today - today's stats across every category
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "healthcal://today",
		Name:        "Today's Health Data",
		Description: "Aggregated stats for every category with data today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// healthcal://categories - the category catalog
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "healthcal://categories",
		Name:        "Category Catalog",
		Description: "Every known health category with its unit and aggregation kind",
		MIMEType:    "application/json",
	}, s.handleCategoriesResource)
}

// Resource handlers

func (s *Server) handleSyncedResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ranges := s.engine.Synced()
	if len(ranges) > 10 {
		ranges = ranges[:10]
	}

	result := map[string]interface{}{
		"ranges": ranges,
		"count":  len(ranges),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "healthcal://synced",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	byCategory, err := s.engine.MonthlyStats(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to compute today's stats: %w", err)
	}

	categories := make(map[string]interface{}, len(byCategory))
	for name, st := range byCategory {
		categories[name] = map[string]interface{}{
			"total":   st.FormattedTotal,
			"average": st.FormattedAverage,
			"days":    st.UnitsWithData,
			"unit":    st.UnitName,
		}
	}

	result := map[string]interface{}{
		"date":       dayStart.Format("2006-01-02"),
		"categories": categories,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "healthcal://today",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleCategoriesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	cats := s.engine.Registry().All()

	entries := make([]map[string]interface{}, 0, len(cats))
	for _, cat := range cats {
		entries = append(entries, map[string]interface{}{
			"name":  cat.Name,
			"kind":  string(cat.Kind),
			"unit":  cat.Unit,
			"emoji": cat.Emoji,
		})
	}

	data, err := json.MarshalIndent(map[string]interface{}{"categories": entries}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "healthcal://categories",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
