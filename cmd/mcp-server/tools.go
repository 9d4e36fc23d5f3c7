// cmd/mcp-server/tools.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"job-portal-workers/internal/mockapi"
	"job-portal-workers/pkg/mockai"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// JobLister is the read side of the mock API store.
type JobLister interface {
	List(ctx context.Context, collection string, filter map[string]string) ([]mockapi.Record, error)
}

func registerTools(s *server.MCPServer, jobs JobLister) {
	authenticity := mcp.NewTool("check_job_authenticity",
		mcp.WithDescription("Score a job posting for scam signals and return a low/medium/high risk label"),
	)
	authenticity.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"title":        map[string]interface{}{"type": "string", "description": "Job title"},
			"description":  map[string]interface{}{"type": "string", "description": "Full job description"},
			"companyName":  map[string]interface{}{"type": "string", "description": "Hiring company"},
			"contactEmail": map[string]interface{}{"type": "string", "description": "Recruiter contact email"},
			"salary":       map[string]interface{}{"type": "string", "description": "Advertised salary text"},
			"location":     map[string]interface{}{"type": "string", "description": "Job location"},
		},
		Required: []string{"title", "description"},
	}
	s.AddTool(authenticity, handleCheckJobAuthenticity)

	analyze := mcp.NewTool("analyze_content",
		mcp.WithDescription("Compute a keyword toxicity score for user content and suggest softer wording"),
	)
	analyze.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"text": map[string]interface{}{"type": "string", "description": "Content to analyze"},
			"html": map[string]interface{}{"type": "boolean", "description": "Treat text as HTML and strip markup first"},
		},
		Required: []string{"text"},
	}
	s.AddTool(analyze, handleAnalyzeContent)

	chat := mcp.NewTool("generate_chat_response",
		mcp.WithDescription("Reply to a candidate's career question with the assistant's canned answers"),
	)
	chat.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"message": map[string]interface{}{"type": "string", "description": "The user's message"},
		},
		Required: []string{"message"},
	}
	s.AddTool(chat, handleGenerateChatResponse)

	list := mcp.NewTool("list_jobs",
		mcp.WithDescription("List jobs from the mock API store, optionally filtered by keyword and status"),
	)
	list.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"keyword": map[string]interface{}{"type": "string", "description": "Case-insensitive match on title, description, company or skills"},
			"status":  map[string]interface{}{"type": "string", "description": "Only jobs with this status"},
			"limit":   map[string]interface{}{"type": "integer", "description": "Max jobs to return (default: 20, max: 200)"},
		},
	}
	s.AddTool(list, listJobsHandler(jobs))
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, true
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	return args, ok
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleCheckJobAuthenticity(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := arguments(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	job := mockai.JobPosting{}
	job.Title, _ = args["title"].(string)
	job.Description, _ = args["description"].(string)
	job.CompanyName, _ = args["companyName"].(string)
	job.ContactEmail, _ = args["contactEmail"].(string)
	job.Salary, _ = args["salary"].(string)
	job.Location, _ = args["location"].(string)

	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Description) == "" {
		return mcp.NewToolResultError("title and description are required"), nil
	}
	return jsonResult(mockai.CheckJobAuthenticity(job))
}

func handleAnalyzeContent(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := arguments(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	text, _ := args["text"].(string)
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	if isHTML, _ := args["html"].(bool); isHTML {
		analysis, err := mockai.AnalyzeHTML(text)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse html: %v", err)), nil
		}
		return jsonResult(analysis)
	}
	return jsonResult(mockai.AnalyzeContent(text))
}

func handleGenerateChatResponse(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := arguments(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	message, _ := args["message"].(string)
	if strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	return jsonResult(mockai.GenerateChatResponse(message))
}

func listJobsHandler(jobs JobLister) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := arguments(request)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}
		if jobs == nil {
			return mcp.NewToolResultError("job store is not configured"), nil
		}

		filter := map[string]string{}
		if status, ok := args["status"].(string); ok && strings.TrimSpace(status) != "" {
			filter["status"] = strings.TrimSpace(status)
		}
		keyword, _ := args["keyword"].(string)
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		limit := defaultListLimit
		if v, ok := args["limit"].(float64); ok && v >= 1 {
			limit = maxListLimit
			if v < maxListLimit {
				limit = int(v)
			}
		}

		records, err := jobs.List(ctx, "jobs", filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list jobs: %v", err)), nil
		}

		matched := []mockapi.Record{}
		for _, rec := range records {
			if keyword != "" && !matchesKeyword(rec, keyword) {
				continue
			}
			matched = append(matched, rec)
			if len(matched) == limit {
				break
			}
		}
		return jsonResult(map[string]interface{}{"jobs": matched, "count": len(matched)})
	}
}

func matchesKeyword(rec mockapi.Record, keyword string) bool {
	for _, field := range []string{"title", "description", "companyName"} {
		if s, ok := rec[field].(string); ok && strings.Contains(strings.ToLower(s), keyword) {
			return true
		}
	}
	if skills, ok := rec["skills"].([]interface{}); ok {
		for _, skill := range skills {
			if s, ok := skill.(string); ok && strings.EqualFold(s, keyword) {
				return true
			}
		}
	}
	return false
}
