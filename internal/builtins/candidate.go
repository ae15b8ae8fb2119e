// ABOUTME: Candidate pack: assistant, resume optimizer, interview prep, salary research.
// ABOUTME: Template tools with the same default substitution as the recruiter pack.

package builtins

import (
	"context"

	"github.com/2389/hiring-router/internal/tools"
)

// CandidatePack creates the candidate pack.
func CandidatePack() *tools.Pack {
	return &tools.Pack{
		ID: "builtin:candidate",
		Tools: []*tools.Tool{
			{
				Name:        "candidate_assistant",
				Description: "General guidance for a job seeker",
				InputSchema: `{"type":"object","properties":{"task_description":{"type":"string"},"stage":{"type":["string","null"]}},"required":["task_description"]}`,
				Handler:     candidateAssistant,
			},
			{
				Name:        "resume_optimizer",
				Description: "Instructions for making a resume ATS-friendly",
				InputSchema: `{"type":"object","properties":{"resume_text":{"type":["string","null"]},"target_role":{"type":["string","null"]}}}`,
				Handler:     resumeOptimizer,
			},
			{
				Name:        "interview_prep",
				Description: "Build an interview preparation plan",
				InputSchema: `{"type":"object","properties":{"role":{"type":["string","null"]},"topics":{"type":["array","null"],"items":{"type":"string"}},"days_until_interview":{"type":["integer","null"]}}}`,
				Handler:     interviewPrep,
			},
			{
				Name:        "salary_research",
				Description: "Instructions for researching salary ranges",
				InputSchema: `{"type":"object","properties":{"role":{"type":["string","null"]},"location":{"type":["string","null"]},"experience_years":{"type":["integer","null"]}}}`,
				Handler:     salaryResearch,
			},
		},
	}
}

// AssistantGuidance is general next-step advice.
type AssistantGuidance struct {
	Type            string   `json:"type"`
	Stage           string   `json:"stage"`
	NextSteps       []string `json:"next_steps"`
	TaskDescription string   `json:"task_description"`
}

func candidateAssistant(_ context.Context, args map[string]any) (any, error) {
	var in struct {
		TaskDescription string `json:"task_description"`
		Stage           string `json:"stage"`
	}
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	return AssistantGuidance{
		Type:  "assistant_guidance",
		Stage: or(in.Stage, "general"),
		NextSteps: []string{
			"Clarify target roles and locations",
			"Update resume with quantifiable impact",
			"Apply to curated list of companies",
		},
		TaskDescription: in.TaskDescription,
	}, nil
}

// ResumePrompt holds resume rewrite instructions.
type ResumePrompt struct {
	Type         string   `json:"type"`
	TargetRole   string   `json:"target_role"`
	Instructions []string `json:"instructions"`
	ResumeText   string   `json:"resume_text"`
}

func resumeOptimizer(_ context.Context, args map[string]any) (any, error) {
	var in struct {
		ResumeText string `json:"resume_text"`
		TargetRole string `json:"target_role"`
	}
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	return ResumePrompt{
		Type:       "resume_prompt",
		TargetRole: or(in.TargetRole, "Role"),
		Instructions: []string{
			"Rewrite resume to be ATS-friendly",
			"Use action verbs and measurable outcomes",
			"Match keywords from job postings",
		},
		ResumeText: in.ResumeText,
	}, nil
}

// PrepDay is one day of an interview plan.
type PrepDay struct {
	Day   int    `json:"day"`
	Focus string `json:"focus"`
}

// InterviewPlan is a short preparation schedule.
type InterviewPlan struct {
	Type               string    `json:"type"`
	Role               string    `json:"role"`
	Topics             []string  `json:"topics"`
	Schedule           []PrepDay `json:"schedule"`
	DaysUntilInterview *int      `json:"days_until_interview"`
}

func interviewPrep(_ context.Context, args map[string]any) (any, error) {
	var in struct {
		Role               string   `json:"role"`
		Topics             []string `json:"topics"`
		DaysUntilInterview *int     `json:"days_until_interview"`
	}
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	return InterviewPlan{
		Type:   "interview_plan",
		Role:   or(in.Role, "Role"),
		Topics: orList(in.Topics, "Behavioral", "System Design", "Algorithms"),
		Schedule: []PrepDay{
			{Day: 1, Focus: "Behavioral stories (STAR)"},
			{Day: 2, Focus: "Core algorithms & DS"},
			{Day: 3, Focus: "System design walkthroughs"},
		},
		DaysUntilInterview: in.DaysUntilInterview,
	}, nil
}

// SalaryResearch holds salary research instructions.
type SalaryResearch struct {
	Type         string   `json:"type"`
	Instructions []string `json:"instructions"`
	Role         string   `json:"role"`
	Location     string   `json:"location"`
}

func salaryResearch(_ context.Context, args map[string]any) (any, error) {
	var in struct {
		Role     string `json:"role"`
		Location string `json:"location"`
	}
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	return SalaryResearch{
		Type: "salary_research",
		Instructions: []string{
			"Use hh.ru and other sources to find salary ranges",
			"Record median, p25, p75",
			"Adjust for experience and company size",
		},
		Role:     or(in.Role, "Role"),
		Location: or(in.Location, "Location"),
	}, nil
}
