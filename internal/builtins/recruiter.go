// ABOUTME: Recruiter pack: market research, job post, application form, quiz, homework, journey, funnel.
// ABOUTME: Each tool fills a static template, substituting defaults for missing arguments.

package builtins

import (
	"context"

	"github.com/2389/hiring-router/internal/tools"
)

// WorkflowURLPlaceholder is used when no workflow URL is configured.
const WorkflowURLPlaceholder = "${N8N_WEBHOOK_URL}"

// RecruiterPack creates the recruiter pack. workflowURL is the default
// webhook for generated application forms.
func RecruiterPack(workflowURL string) *tools.Pack {
	r := &recruiterHandlers{workflowURL: workflowURL}
	return &tools.Pack{
		ID: "builtin:recruiter",
		Tools: []*tools.Tool{
			{
				Name:        "market_research",
				Description: "Guide for HH.ru market research and salary stats",
				InputSchema: `{"type":"object","properties":{"query":{"type":["string","null"]},"location":{"type":["string","null"]},"role":{"type":["string","null"]},"experience_years":{"type":["integer","null"]}}}`,
				Handler:     r.MarketResearch,
			},
			{
				Name:        "generate_job_post",
				Description: "Build a job post content prompt",
				InputSchema: `{"type":"object","properties":{"company":{"type":["string","null"]},"role":{"type":["string","null"]},"seniority":{"type":["string","null"]},"location":{"type":["string","null"]},"requirements":{"type":["array","null"],"items":{"type":"string"}},"responsibilities":{"type":["array","null"],"items":{"type":"string"}},"benefits":{"type":["array","null"],"items":{"type":"string"}}}}`,
				Handler:     r.GenerateJobPost,
			},
			{
				Name:        "generate_application_form",
				Description: "Return a workflow trigger spec for creating an application form",
				InputSchema: `{"type":"object","properties":{"position":{"type":["string","null"]},"webhook_url":{"type":["string","null"]}}}`,
				Handler:     r.GenerateApplicationForm,
			},
			{
				Name:        "generate_quiz",
				Description: "Build a screening quiz spec",
				InputSchema: `{"type":"object","properties":{"role":{"type":["string","null"]},"topics":{"type":["array","null"],"items":{"type":"string"}},"num_questions":{"type":["integer","null"]},"difficulty":{"type":["string","null"]}}}`,
				Handler:     r.GenerateQuiz,
			},
			{
				Name:        "generate_homework",
				Description: "Build a take-home assignment spec",
				InputSchema: `{"type":"object","properties":{"role":{"type":["string","null"]},"objective":{"type":["string","null"]},"deliverables":{"type":["array","null"],"items":{"type":"string"}},"evaluation_rubric":{"type":["object","null"],"additionalProperties":{"type":"integer"}}}}`,
				Handler:     r.GenerateHomework,
			},
			{
				Name:        "generate_candidate_journey",
				Description: "Build a candidate journey spec",
				InputSchema: `{"type":"object","properties":{"stages":{"type":["array","null"],"items":{"type":"string"}}}}`,
				Handler:     r.GenerateCandidateJourney,
			},
			{
				Name:        "generate_funnel_report",
				Description: "Request a hiring funnel report",
				InputSchema: `{"type":"object","properties":{"time_range":{"type":["string","null"]},"group_by":{"type":["string","null"]}}}`,
				Handler:     r.GenerateFunnelReport,
			},
		},
	}
}

type recruiterHandlers struct {
	workflowURL string
}

// Market research

type marketResearchInput struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Role     string `json:"role"`
}

// Instructions is a list of steps for the caller to follow.
type Instructions struct {
	Type  string   `json:"type"`
	Steps []string `json:"steps"`
}

func (r *recruiterHandlers) MarketResearch(_ context.Context, args map[string]any) (any, error) {
	var in marketResearchInput
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	role := or(in.Role, or(in.Query, "e.g., Python разработчик"))
	return Instructions{
		Type: "instructions",
		Steps: []string{
			"Open hh.ru and switch to the appropriate region.",
			"Search for role: " + role + " in " + or(in.Location, "target location") + ".",
			"Filter by experience level and employment type as needed.",
			"Collect: number of vacancies, common skills, tech stack, seniority split.",
			"Check salary statistics page (Зарплаты) and record median, p25, p75.",
			"Summarize insights with bullet points and suggested compensation bands.",
		},
	}, nil
}

// Job post

type jobPostInput struct {
	Company          string   `json:"company"`
	Role             string   `json:"role"`
	Seniority        string   `json:"seniority"`
	Location         string   `json:"location"`
	Requirements     []string `json:"requirements"`
	Responsibilities []string `json:"responsibilities"`
	Benefits         []string `json:"benefits"`
}

// JobPostContext is the filled template context of a job post.
type JobPostContext struct {
	Company          string   `json:"company"`
	Role             string   `json:"role"`
	Seniority        string   `json:"seniority"`
	Location         string   `json:"location"`
	Requirements     []string `json:"requirements"`
	Responsibilities []string `json:"responsibilities"`
	Benefits         []string `json:"benefits"`
}

// ContentPrompt names a template and the context to render it with.
type ContentPrompt struct {
	Type     string         `json:"type"`
	Template string         `json:"template"`
	Context  JobPostContext `json:"context"`
}

func (r *recruiterHandlers) GenerateJobPost(_ context.Context, args map[string]any) (any, error) {
	var in jobPostInput
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	return ContentPrompt{
		Type:     "content_prompt",
		Template: "job_post",
		Context: JobPostContext{
			Company:          or(in.Company, "Company"),
			Role:             or(in.Role, "Role"),
			Seniority:        or(in.Seniority, "Senior"),
			Location:         or(in.Location, "Remote"),
			Requirements:     orList(in.Requirements, "3+ years experience", "Required tech stack"),
			Responsibilities: orList(in.Responsibilities, "Key responsibility 1", "Key responsibility 2"),
			Benefits:         orList(in.Benefits, "Competitive salary", "Flexible schedule"),
		},
	}, nil
}

// Application form

type applicationFormInput struct {
	Position   string `json:"position"`
	WebhookURL string `json:"webhook_url"`
}

// FormField is one field of an application form.
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// WorkflowStep is one action of the submission workflow.
type WorkflowStep struct {
	Action  string `json:"action"`
	Channel string `json:"channel,omitempty"`
}

// Workflow is the submission workflow triggered by a form.
type Workflow struct {
	Trigger    string         `json:"trigger"`
	WebhookURL string         `json:"webhook_url"`
	Steps      []WorkflowStep `json:"steps"`
}

// FormSpec describes an application form and its workflow.
type FormSpec struct {
	Type     string      `json:"type"`
	Position string      `json:"position"`
	Fields   []FormField `json:"fields"`
	Workflow Workflow    `json:"workflow"`
}

func (r *recruiterHandlers) GenerateApplicationForm(_ context.Context, args map[string]any) (any, error) {
	var in applicationFormInput
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	return FormSpec{
		Type:     "form_spec",
		Position: or(in.Position, "Position"),
		Fields: []FormField{
			{Name: "full_name", Label: "Full Name", Type: "text", Required: true},
			{Name: "email", Label: "Email", Type: "email", Required: true},
			{Name: "resume_url", Label: "Resume URL", Type: "url", Required: true},
			{Name: "linkedin", Label: "LinkedIn", Type: "url", Required: false},
			{Name: "portfolio", Label: "Portfolio", Type: "url", Required: false},
		},
		Workflow: Workflow{
			Trigger:    "webhook",
			WebhookURL: or(in.WebhookURL, or(r.workflowURL, WorkflowURLPlaceholder)),
			Steps: []WorkflowStep{
				{Action: "store_submission"},
				{Action: "notify_recruiter", Channel: "email"},
				{Action: "create_candidate_record"},
			},
		},
	}, nil
}

// Quiz

type quizInput struct {
	Role         string   `json:"role"`
	Topics       []string `json:"topics"`
	NumQuestions *int     `json:"num_questions"`
	Difficulty   *string  `json:"difficulty"`
}

// QuizSpec describes a screening quiz.
type QuizSpec struct {
	Type         string   `json:"type"`
	Role         string   `json:"role"`
	Difficulty   string   `json:"difficulty"`
	NumQuestions int      `json:"num_questions"`
	Topics       []string `json:"topics"`
}

func (r *recruiterHandlers) GenerateQuiz(_ context.Context, args map[string]any) (any, error) {
	var in quizInput
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	spec := QuizSpec{
		Type:         "quiz_spec",
		Role:         or(in.Role, "Role"),
		Difficulty:   "medium",
		NumQuestions: 10,
		Topics:       orList(in.Topics, "Topic A", "Topic B"),
	}
	if in.Difficulty != nil {
		spec.Difficulty = *in.Difficulty
	}
	if in.NumQuestions != nil {
		spec.NumQuestions = *in.NumQuestions
	}
	return spec, nil
}

// Homework

type homeworkInput struct {
	Role             string         `json:"role"`
	Objective        string         `json:"objective"`
	Deliverables     []string       `json:"deliverables"`
	EvaluationRubric map[string]int `json:"evaluation_rubric"`
}

// HomeworkSpec describes a take-home assignment.
type HomeworkSpec struct {
	Type             string         `json:"type"`
	Role             string         `json:"role"`
	Objective        string         `json:"objective"`
	Deliverables     []string       `json:"deliverables"`
	EvaluationRubric map[string]int `json:"evaluation_rubric"`
}

func (r *recruiterHandlers) GenerateHomework(_ context.Context, args map[string]any) (any, error) {
	var in homeworkInput
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	rubric := in.EvaluationRubric
	if len(rubric) == 0 {
		rubric = map[string]int{"correctness": 40, "code_quality": 30, "tests": 20, "docs": 10}
	}
	return HomeworkSpec{
		Type:             "homework_spec",
		Role:             or(in.Role, "Role"),
		Objective:        or(in.Objective, "Build a small app demonstrating core skills"),
		Deliverables:     orList(in.Deliverables, "GitHub repo", "README with instructions"),
		EvaluationRubric: rubric,
	}, nil
}

// Candidate journey

// JourneySpec lists the hiring stages a candidate goes through.
type JourneySpec struct {
	Type   string   `json:"type"`
	Stages []string `json:"stages"`
}

func (r *recruiterHandlers) GenerateCandidateJourney(_ context.Context, args map[string]any) (any, error) {
	var in struct {
		Stages []string `json:"stages"`
	}
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	return JourneySpec{
		Type: "journey_spec",
		Stages: orList(in.Stages,
			"Sourcing",
			"Application",
			"Screening",
			"Technical Assessment",
			"Onsite/Panel",
			"Offer",
			"Onboarding",
		),
	}, nil
}

// Funnel report

// FunnelReportRequest asks for a funnel report over a time range.
type FunnelReportRequest struct {
	Type      string `json:"type"`
	TimeRange string `json:"time_range"`
	GroupBy   string `json:"group_by"`
}

func (r *recruiterHandlers) GenerateFunnelReport(_ context.Context, args map[string]any) (any, error) {
	var in struct {
		TimeRange *string `json:"time_range"`
		GroupBy   string  `json:"group_by"`
	}
	if err := tools.DecodeArgs(args, &in); err != nil {
		return nil, err
	}

	req := FunnelReportRequest{
		Type:      "funnel_report_request",
		TimeRange: "last_30_days",
		GroupBy:   or(in.GroupBy, "stage"),
	}
	if in.TimeRange != nil {
		req.TimeRange = *in.TimeRange
	}
	return req, nil
}

// or returns fallback when s is empty.
func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// orList returns fallback when list is empty.
func orList(list []string, fallback ...string) []string {
	if len(list) == 0 {
		return fallback
	}
	return list
}
