// Package builtins provides the hiring tool packs.
//
// # Overview
//
// Most tools are template generators: they fill a fixed structure with the
// caller's arguments, substituting a default for anything missing. They do
// no I/O. The analytics pack reads the request log, and route_hiring_task
// dispatches to the other tools through the registry.
//
// # Tool Packs
//
// Recruiter Pack (builtin:recruiter):
//
//   - market_research: Steps for HH.ru market and salary research
//   - generate_job_post: Job post content prompt
//   - generate_application_form: Form fields plus submission workflow
//   - generate_quiz: Screening quiz spec
//   - generate_homework: Take-home assignment spec with rubric
//   - generate_candidate_journey: Hiring stages
//   - generate_funnel_report: Funnel report request
//
// Candidate Pack (builtin:candidate):
//
//   - candidate_assistant: General next steps
//   - resume_optimizer: ATS rewrite instructions
//   - interview_prep: Three-day preparation plan
//   - salary_research: Salary range research steps
//
// Analytics Pack (builtin:analytics):
//
//   - get_request_analytics: Counts of logged lines by level and event
//   - export_logs: zstd bundle of the request logs
//
// Routing Pack (builtin:routing):
//
//   - get_available_tools: Tool names per audience
//   - route_hiring_task: Keyword dispatch to one of the tools above
//
// # Registration
//
//	builtins.RegisterAll(registry, builtins.Deps{...})
package builtins
