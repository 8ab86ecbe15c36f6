// ABOUTME: MCP tool implementations for the health-to-calendar engine.
// ABOUTME: Provides stats, chart, sync, and ledger operations over the engine.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// get_stats
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_stats",
		Description: "Get aggregated statistics for one health category over a date range",
	}, s.handleGetStats)

	// get_chart
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_chart",
		Description: "Get a gap-free chart series (hourly or daily buckets) for one category",
	}, s.handleGetChart)

	// preview_sync
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "preview_sync",
		Description: "List the calendar records a sync of the range would create, without creating them",
	}, s.handlePreviewSync)

	// sync_range
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "sync_range",
		Description: "Project a date range of health data into calendar records (idempotent per range)",
	}, s.handleSyncRange)

	// list_synced
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_synced",
		Description: "List previously synced ranges, most recent first",
	}, s.handleListSynced)

	// unsync_range
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "unsync_range",
		Description: "Undo one synced range by ID or ID prefix, deleting its calendar records",
	}, s.handleUnsyncRange)

	// unsync_all
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "unsync_all",
		Description: "Undo every synced range and delete all created calendar records",
	}, s.handleUnsyncAll)

	// clear_cache
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "clear_cache",
		Description: "Drop all session-cached stats and chart results",
	}, s.handleClearCache)
}

// Tool input/output types

type rangeInput struct {
	StartDate string `json:"start_date" jsonschema:"First day of the range (YYYY-MM-DD)"`
	EndDate   string `json:"end_date" jsonschema:"Last day of the range inclusive (YYYY-MM-DD)"`
}

type getStatsInput struct {
	Category  string `json:"category" jsonschema:"Category name (steps, distance, active_energy, water, weight, heart_rate, sleep, mindfulness, workouts)"`
	StartDate string `json:"start_date" jsonschema:"First day of the range (YYYY-MM-DD)"`
	EndDate   string `json:"end_date" jsonschema:"Last day of the range inclusive (YYYY-MM-DD)"`
}

type statsOutput struct {
	Category      string  `json:"category"`
	Total         float64 `json:"total"`
	Average       float64 `json:"average"`
	DaysWithData  int     `json:"days_with_data"`
	FormattedText string  `json:"formatted_text"`
	Message       string  `json:"message"`
}

type getChartInput struct {
	Category    string `json:"category" jsonschema:"Category name"`
	StartDate   string `json:"start_date" jsonschema:"First day of the range (YYYY-MM-DD)"`
	EndDate     string `json:"end_date" jsonschema:"Last day of the range inclusive (YYYY-MM-DD)"`
	Granularity string `json:"granularity,omitempty" jsonschema:"Bucket size: hourly or daily (default daily)"`
}

type chartPointOutput struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Label     string  `json:"label"`
}

type syncOutput struct {
	ID            string `json:"id"`
	Created       int    `json:"created"`
	Failed        int    `json:"failed"`
	AlreadySynced bool   `json:"already_synced"`
	Message       string `json:"message"`
}

type unsyncRangeInput struct {
	ID string `json:"id" jsonschema:"Synced range ID or prefix"`
}

type deleteOutput struct {
	Ranges  int    `json:"ranges"`
	Deleted int    `json:"deleted"`
	Failed  int    `json:"failed"`
	Message string `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type emptyInput struct{}

// parseDay accepts YYYY-MM-DD or RFC 3339 and returns the day start.
func parseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
}

// parseRange turns an inclusive day pair into a half-open [start, end) window.
func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := parseDay(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDay(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}
	return start, end.AddDate(0, 0, 1), nil
}

// Tool handlers

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input getStatsInput) (*mcp.CallToolResult, statsOutput, error) {
	start, end, err := parseRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, statsOutput{}, err
	}

	result, present, err := s.engine.Stats(ctx, input.Category, start, end)
	if err != nil {
		return nil, statsOutput{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	if !present {
		return nil, statsOutput{
			Category: input.Category,
			Message:  fmt.Sprintf("No %s data between %s and %s.", input.Category, input.StartDate, input.EndDate),
		}, nil
	}

	return nil, statsOutput{
		Category:      input.Category,
		Total:         result.TotalValue,
		Average:       result.AverageValue,
		DaysWithData:  result.UnitsWithData,
		FormattedText: fmt.Sprintf("%s total, %s average", result.FormattedTotal, result.FormattedAverage),
		Message: fmt.Sprintf("%s: %s total across %d days with data (%s/day average)",
			input.Category, result.FormattedTotal, result.UnitsWithData, result.FormattedAverage),
	}, nil
}

func (s *Server) handleGetChart(ctx context.Context, req *mcp.CallToolRequest, input getChartInput) (*mcp.CallToolResult, any, error) {
	start, end, err := parseRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, nil, err
	}

	hourly := false
	switch input.Granularity {
	case "", "daily":
	case "hourly":
		hourly = true
	default:
		return nil, nil, fmt.Errorf("unknown granularity: %s (want hourly or daily)", input.Granularity)
	}

	points, err := s.engine.Chart(ctx, input.Category, start, end, hourly)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build chart: %w", err)
	}

	out := make([]chartPointOutput, len(points))
	for i, p := range points {
		out[i] = chartPointOutput{
			Timestamp: p.Timestamp.Format(time.RFC3339),
			Value:     p.Value,
			Label:     p.Label,
		}
	}
	return nil, out, nil
}

func (s *Server) handlePreviewSync(ctx context.Context, req *mcp.CallToolRequest, input rangeInput) (*mcp.CallToolResult, any, error) {
	start, err := parseDay(input.StartDate)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDay(input.EndDate)
	if err != nil {
		return nil, nil, err
	}

	records, err := s.engine.PreviewSync(ctx, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to preview sync: %w", err)
	}

	if len(records) == 0 {
		return nil, map[string]interface{}{"message": "No records would be created."}, nil
	}
	return nil, records, nil
}

func (s *Server) handleSyncRange(ctx context.Context, req *mcp.CallToolRequest, input rangeInput) (*mcp.CallToolResult, syncOutput, error) {
	start, err := parseDay(input.StartDate)
	if err != nil {
		return nil, syncOutput{}, err
	}
	end, err := parseDay(input.EndDate)
	if err != nil {
		return nil, syncOutput{}, err
	}

	report, err := s.engine.Sync(ctx, start, end)
	if err != nil {
		return nil, syncOutput{}, fmt.Errorf("sync failed: %w", err)
	}

	return nil, syncOutput{
		ID:            report.Range.ID.String()[:8],
		Created:       report.Created,
		Failed:        report.Failed,
		AlreadySynced: report.AlreadySynced,
		Message:       report.Summary(),
	}, nil
}

func (s *Server) handleListSynced(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	ranges := s.engine.Synced()
	if len(ranges) == 0 {
		return nil, map[string]interface{}{"message": "No synced ranges."}, nil
	}
	return nil, ranges, nil
}

func (s *Server) handleUnsyncRange(ctx context.Context, req *mcp.CallToolRequest, input unsyncRangeInput) (*mcp.CallToolResult, deleteOutput, error) {
	report, err := s.engine.Unsync(ctx, input.ID)
	if err != nil {
		return nil, deleteOutput{}, fmt.Errorf("failed to unsync range: %w", err)
	}

	return nil, deleteOutput{
		Ranges:  report.Ranges,
		Deleted: report.Deleted,
		Failed:  report.Failed,
		Message: report.Summary(),
	}, nil
}

func (s *Server) handleUnsyncAll(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, deleteOutput, error) {
	report, err := s.engine.UnsyncAll(ctx)
	if err != nil {
		return nil, deleteOutput{}, fmt.Errorf("failed to unsync all: %w", err)
	}

	return nil, deleteOutput{
		Ranges:  report.Ranges,
		Deleted: report.Deleted,
		Failed:  report.Failed,
		Message: report.Summary(),
	}, nil
}

func (s *Server) handleClearCache(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, simpleOutput, error) {
	s.engine.ClearCache()
	return nil, simpleOutput{Message: "Session cache cleared."}, nil
}
