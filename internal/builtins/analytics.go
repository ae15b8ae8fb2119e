// ABOUTME: Analytics pack: request log summary and log export.
// ABOUTME: Both tools read the sink's files; neither writes to the active log.

package builtins

import (
	"context"

	"github.com/2389/hiring-router/internal/analytics"
	"github.com/2389/hiring-router/internal/tools"
)

// AnalyticsPack creates the analytics pack over an aggregator and exporter.
func AnalyticsPack(agg *analytics.Aggregator, exp *analytics.Exporter) *tools.Pack {
	return &tools.Pack{
		ID: "builtin:analytics",
		Tools: []*tools.Tool{
			{
				Name:        "get_request_analytics",
				Description: "Summarize the request log by level and event",
				InputSchema: `{"type":"object","properties":{}}`,
				Handler: func(context.Context, map[string]any) (any, error) {
					return agg.Summarize()
				},
			},
			{
				Name:        "export_logs",
				Description: "Bundle the request logs into a compressed export",
				InputSchema: `{"type":"object","properties":{}}`,
				Handler: func(context.Context, map[string]any) (any, error) {
					return exp.Export()
				},
			},
		},
	}
}
