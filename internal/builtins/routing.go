// ABOUTME: Routing pack: the tool inventory and the route_hiring_task dispatcher.
// ABOUTME: route_hiring_task parses the role and hands the request to the Router.

package builtins

import (
	"context"
	"strings"

	"github.com/2389/hiring-router/internal/routing"
	"github.com/2389/hiring-router/internal/tools"
)

// Tool names per audience, as reported by get_available_tools.
var (
	RecruiterTools = []string{
		"market_research",
		"generate_job_post",
		"generate_application_form",
		"generate_quiz",
		"generate_homework",
		"generate_candidate_journey",
		"generate_funnel_report",
	}
	CandidateTools = []string{
		"candidate_assistant",
		"resume_optimizer",
		"interview_prep",
		"salary_research",
	}
	AnalyticsTools = []string{"get_request_analytics", "export_logs"}
)

// RoutingPack creates the inventory and dispatcher tools.
func RoutingPack(router *routing.Router) *tools.Pack {
	return &tools.Pack{
		ID: "builtin:routing",
		Tools: []*tools.Tool{
			{
				Name:        "get_available_tools",
				Description: "List available tools, optionally only those for one user type",
				InputSchema: `{"type":"object","properties":{"user_type":{"type":["string","null"]}}}`,
				Handler:     availableTools,
			},
			{
				Name:        "route_hiring_task",
				Description: "Route a hiring task to the appropriate tool based on its description. user_type must be recruiter or candidate; any other value is rejected",
				InputSchema: `{"type":"object","properties":{"user_type":{"type":"string"},"task_description":{"type":"string"},"context":{"type":["object","null"]}},"required":["user_type","task_description"]}`,
				Handler: func(ctx context.Context, args map[string]any) (any, error) {
					var in struct {
						UserType        string         `json:"user_type"`
						TaskDescription string         `json:"task_description"`
						Context         map[string]any `json:"context"`
					}
					if err := tools.DecodeArgs(args, &in); err != nil {
						return nil, err
					}
					role, err := routing.ParseRole(in.UserType)
					if err != nil {
						return nil, err
					}
					return router.Route(ctx, routing.Request{
						Role:            role,
						TaskDescription: in.TaskDescription,
						Context:         in.Context,
					})
				},
			},
		},
	}
}

func availableTools(_ context.Context, args map[string]any) (any, error) {
	var in struct {
		UserType string `json:"user_type"`
	}
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	switch strings.ToLower(in.UserType) {
	case "recruiter":
		return map[string][]string{"recruiter": RecruiterTools}, nil
	case "candidate":
		return map[string][]string{"candidate": CandidateTools}, nil
	}
	return map[string][]string{
		"recruiter": RecruiterTools,
		"candidate": CandidateTools,
		"analytics": AnalyticsTools,
	}, nil
}
