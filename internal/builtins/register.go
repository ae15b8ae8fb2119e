// ABOUTME: Registers every hiring pack and wires route_hiring_task to the registry.
// ABOUTME: The router invokes tools through the registry so routed calls are instrumented too.

package builtins

import (
	"fmt"

	"github.com/2389/hiring-router/internal/analytics"
	"github.com/2389/hiring-router/internal/routing"
	"github.com/2389/hiring-router/internal/telemetry"
	"github.com/2389/hiring-router/internal/tools"
)

// Deps are the collaborators the packs need.
type Deps struct {
	Aggregator *analytics.Aggregator
	Exporter   *analytics.Exporter
	Emitter    telemetry.Emitter // routing decisions
	Policy     routing.Policy
	// IdentityFields are hashed in private routing records; defaults to user_id.
	IdentityFields []string
	WorkflowURL    string
}

// RegisterAll registers the recruiter, candidate, analytics and routing
// packs on reg and returns the router backing route_hiring_task.
func RegisterAll(reg *tools.Registry, deps Deps) (*routing.Router, error) {
	if deps.Aggregator == nil || deps.Exporter == nil {
		return nil, fmt.Errorf("aggregator and exporter are required")
	}

	router, err := routing.NewRouter(routing.Config{
		Invoker:        reg,
		Emitter:        deps.Emitter,
		Policy:         deps.Policy,
		IdentityFields: deps.IdentityFields,
	})
	if err != nil {
		return nil, err
	}

	packs := []*tools.Pack{
		RecruiterPack(deps.WorkflowURL),
		CandidatePack(),
		AnalyticsPack(deps.Aggregator, deps.Exporter),
		RoutingPack(router),
	}
	for _, p := range packs {
		if err := reg.Register(p); err != nil {
			return nil, fmt.Errorf("registering %s pack: %w", p.ID, err)
		}
	}
	return router, nil
}
