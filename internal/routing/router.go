// ABOUTME: Router dispatching hiring requests to downstream tools by keyword.
// ABOUTME: Logs each routing decision once, hashing identifiers under the private policy.

package routing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/2389/hiring-router/internal/telemetry"
)

// EventRoute is the event name of a routing decision.
const EventRoute = "route_hiring_task"

// UnroutedMessage accompanies an unrouted recruiter request.
const UnroutedMessage = "No matching route found; please refine the task description."

// Policy controls what a routing decision record may contain.
type Policy string

const (
	// PolicyPrivate hashes identifying fields and never logs raw text.
	PolicyPrivate Policy = "private"
	// PolicyRaw logs the description and full context.
	PolicyRaw Policy = "raw"
)

// ParsePolicy accepts "private", "raw" or "" (private).
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyPrivate, nil
	case PolicyPrivate, PolicyRaw:
		return p, nil
	default:
		return "", fmt.Errorf("invalid privacy mode %q (want private or raw)", s)
	}
}

// Invoker calls a named operation. *tools.Registry satisfies it.
type Invoker interface {
	Call(ctx context.Context, name string, args map[string]any) (any, error)
}

// Request is one routing request.
type Request struct {
	Role            Role
	TaskDescription string
	Context         map[string]any
}

// Unrouted is returned for recruiter requests that match no route.
type Unrouted struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Config configures a Router.
type Config struct {
	Invoker Invoker
	Emitter telemetry.Emitter
	Policy  Policy
	// IdentityFields are the context keys hashed under PolicyPrivate.
	// Defaults to ["user_id"].
	IdentityFields []string
	LoggerName     string
}

// Router resolves requests against the route tables and invokes the result.
type Router struct {
	invoker        Invoker
	emitter        telemetry.Emitter
	policy         Policy
	identityFields []string
	loggerName     string
}

// NewRouter creates a Router.
func NewRouter(cfg Config) (*Router, error) {
	if cfg.Invoker == nil {
		return nil, fmt.Errorf("router: invoker is required")
	}
	r := &Router{
		invoker:        cfg.Invoker,
		emitter:        cfg.Emitter,
		policy:         cfg.Policy,
		identityFields: cfg.IdentityFields,
		loggerName:     cfg.LoggerName,
	}
	if r.emitter == nil {
		r.emitter = telemetry.Discard
	}
	if r.policy == "" {
		r.policy = PolicyPrivate
	}
	if len(r.identityFields) == 0 {
		r.identityFields = []string{"user_id"}
	}
	if r.loggerName == "" {
		r.loggerName = "hiring_router"
	}
	return r, nil
}

// Route dispatches req. A recruiter request that matches nothing returns
// an Unrouted value and invokes nothing. Errors from the invoked operation
// are returned unchanged.
func (r *Router) Route(ctx context.Context, req Request) (any, error) {
	switch req.Role {
	case RoleRecruiter, RoleCandidate:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, req.Role)
	}

	target := Resolve(req.Role, req.TaskDescription)
	r.logDecision(req, target)

	if target == "" {
		return Unrouted{Status: "unrouted", Message: UnroutedMessage}, nil
	}

	args := make(map[string]any, len(req.Context)+1)
	maps.Copy(args, req.Context)
	if target == CandidateFallback {
		args["task_description"] = req.TaskDescription
	}
	return r.invoker.Call(ctx, target, args)
}

func (r *Router) logDecision(req Request, target string) {
	keys := slices.Sorted(maps.Keys(req.Context))
	if keys == nil {
		keys = []string{}
	}
	extra := map[string]any{
		"event":              EventRoute,
		"user_type":          string(req.Role),
		"description_length": utf8.RuneCountInString(req.TaskDescription),
		"context_keys":       keys,
		"routed_to":          nil,
	}
	if target != "" {
		extra["routed_to"] = target
	}

	switch r.policy {
	case PolicyRaw:
		ctxCopy := make(map[string]any, len(req.Context))
		maps.Copy(ctxCopy, req.Context)
		extra["task_description"] = req.TaskDescription
		extra["context"] = ctxCopy
	default:
		for _, field := range r.identityFields {
			key := hashKey(field)
			v, ok := req.Context[field]
			if !ok || v == nil {
				extra[key] = nil
				continue
			}
			extra[key] = HashIdentity(v)
		}
	}

	defer func() { _ = recover() }()
	r.emitter.Emit(telemetry.Event{
		Level:   telemetry.LevelInfo,
		Logger:  r.loggerName,
		Message: EventRoute,
		Extra:   extra,
	})
}

// HashIdentity returns the hex SHA-256 of v's string form.
func HashIdentity(v any) string {
	sum := sha256.Sum256([]byte(fmt.Sprint(v)))
	return hex.EncodeToString(sum[:])
}

// hashKey names the hashed field: user_id becomes user_hash, anything
// else gets a _hash suffix.
func hashKey(field string) string {
	if base, ok := strings.CutSuffix(field, "_id"); ok && base != "" {
		return base + "_hash"
	}
	return field + "_hash"
}
