// ABOUTME: Ordered keyword route tables and pure route resolution.
// ABOUTME: First group with a substring match on the lowercased description wins.

package routing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole indicates a role other than recruiter or candidate.
var ErrUnknownRole = errors.New("unknown user type")

// Role identifies who is asking.
type Role string

const (
	RoleRecruiter Role = "recruiter"
	RoleCandidate Role = "candidate"
)

// ParseRole trims and lowercases s.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleRecruiter, RoleCandidate:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Route maps a keyword group to the operation it dispatches to.
type Route struct {
	Tool     string
	Keywords []string
}

// matches reports whether any keyword is a substring of text.
// text must already be lowercased.
func (r Route) matches(text string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// CandidateFallback is dispatched when no candidate route matches.
const CandidateFallback = "candidate_assistant"

// RecruiterRoutes is tested in order; the first match wins.
var RecruiterRoutes = []Route{
	{Tool: "market_research", Keywords: []string{"market research", "salary", "hh.ru", "research"}},
	{Tool: "generate_job_post", Keywords: []string{"job post", "vacancy", "description"}},
	{Tool: "generate_application_form", Keywords: []string{"application form", "apply form", "form"}},
	{Tool: "generate_quiz", Keywords: []string{"quiz", "assessment", "test"}},
	{Tool: "generate_homework", Keywords: []string{"homework", "take-home", "assignment"}},
	{Tool: "generate_candidate_journey", Keywords: []string{"candidate journey", "process", "pipeline"}},
	{Tool: "generate_funnel_report", Keywords: []string{"funnel", "report", "analytics"}},
}

// CandidateRoutes is tested in order; CandidateFallback applies otherwise.
var CandidateRoutes = []Route{
	{Tool: "resume_optimizer", Keywords: []string{"resume", "cv", "ats"}},
	{Tool: "interview_prep", Keywords: []string{"interview", "prep", "questions"}},
	{Tool: "salary_research", Keywords: []string{"salary", "market", "range"}},
}

// Resolve returns the operation a description dispatches to for role, or
// "" when a recruiter description matches nothing. Candidates always
// resolve, falling back to CandidateFallback.
func Resolve(role Role, description string) string {
	text := strings.ToLower(description)
	switch role {
	case RoleRecruiter:
		return firstMatch(RecruiterRoutes, text)
	case RoleCandidate:
		if tool := firstMatch(CandidateRoutes, text); tool != "" {
			return tool
		}
		return CandidateFallback
	}
	return ""
}

func firstMatch(routes []Route, text string) string {
	for _, r := range routes {
		if r.matches(text) {
			return r.Tool
		}
	}
	return ""
}
