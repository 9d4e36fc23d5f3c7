package mockai

import (
	"regexp"
	"strings"
)

type topic struct {
	name     string
	keywords []string
	reply    string
}

// Topics are matched in order; the first hit wins.
var topics = []topic{
	{
		name:     "resume",
		keywords: []string{"resume", "cv"},
		reply:    "A strong resume leads with measurable results. Keep it to one or two pages, tailor the summary to the role, and list the skills the posting asks for near the top.",
	},
	{
		name:     "interview",
		keywords: []string{"interview"},
		reply:    "Prepare for interviews by researching the company, practising answers with the STAR method, and having two or three questions ready for the interviewer.",
	},
	{
		name:     "salary",
		keywords: []string{"salary", "pay", "negotiat"},
		reply:    "Before negotiating salary, check market ranges for the role and location. Anchor on the value you bring and consider the whole package, not only base pay.",
	},
	{
		name:     "job_search",
		keywords: []string{"job", "apply", "search", "opening"},
		reply:    "Use the search filters to narrow openings by location, job type and skills. Save interesting jobs and apply early, since newer postings get more attention.",
	},
}

var greeting = regexp.MustCompile(`\b(hello|hi|hey)\b`)

const (
	greetingReply = "Hello! I can help with resumes, interviews, salary negotiation and finding jobs. What would you like to talk about?"
	defaultReply  = "I'm not sure I understood. Try asking about resumes, interview preparation, salary negotiation or searching for jobs."
)

type ChatResponse struct {
	Reply string `json:"reply"`
	Topic string `json:"topic"`
}

// GenerateChatResponse picks a canned reply by keyword. Greetings only match whole words.
func GenerateChatResponse(message string) ChatResponse {
	lower := strings.ToLower(message)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return ChatResponse{Reply: t.reply, Topic: t.name}
			}
		}
	}
	if greeting.MatchString(lower) {
		return ChatResponse{Reply: greetingReply, Topic: "greeting"}
	}
	return ChatResponse{Reply: defaultReply, Topic: "default"}
}
