// internal/workers/application/score-candidate-fit/handler.go
package scorecandidatefit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "score-candidate-fit"
)

const (
	FitStrong   = "strong"
	FitModerate = "moderate"
	FitWeak     = "weak"
)

const (
	weightSkills       = 0.40
	weightExperience   = 0.25
	weightEducation    = 0.15
	weightCompleteness = 0.20
)

// educationLadder is checked from the top so "master of business" is not read as a bachelor.
var educationLadder = []struct {
	level    int
	keywords []string
}{
	{5, []string{"phd", "ph.d", "doctorate"}},
	{4, []string{"master", "m.tech", "mtech", "m.sc", "msc", "mba", "mca", "m.e"}},
	{3, []string{"bachelor", "b.tech", "btech", "b.e", "b.sc", "bsc", "bca", "b.com", "bcom", "graduate"}},
	{2, []string{"diploma", "polytechnic"}},
	{1, []string{"high school", "12th", "hsc", "secondary"}},
}

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		timer.Failed("PARSE_ERROR")
		camunda.FailJob(ctx, client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0, h.logger)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		timer.Failed("FIT_SCORE_FAILED")
		camunda.FailJob(ctx, client, job, "FIT_SCORE_FAILED", err.Error(), 0, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	skills, missing := skillsCoverage(input.Candidate.Skills, input.Job.RequiredSkills)
	experience := experienceFit(input.Candidate.ExperienceYears, input.Job.MinExperience)
	education := educationFit(input.Candidate.Education, input.Job.EducationLevel)
	completeness := profileCompleteness(input.Candidate)

	finalScore := int(math.Round(
		float64(skills)*weightSkills +
			float64(experience)*weightExperience +
			float64(education)*weightEducation +
			float64(completeness)*weightCompleteness))

	breakdown := ScoreBreakdown{
		Skills:       skills,
		Experience:   experience,
		Education:    education,
		Completeness: completeness,
	}
	level := classifyFit(finalScore)

	h.logger.Info("fit score calculated", map[string]interface{}{
		"candidateId": input.Candidate.ID,
		"jobId":       input.Job.ID,
		"score":       finalScore,
		"level":       level,
		"breakdown":   breakdown,
	})

	return &Output{
		FitScore:       finalScore,
		FitLevel:       level,
		ScoreBreakdown: breakdown,
		MissingSkills:  missing,
	}, nil
}

func skillsCoverage(have, required []string) (int, []string) {
	missing := []string{}
	if len(required) == 0 {
		return 100, missing
	}
	owned := make(map[string]bool, len(have))
	for _, s := range have {
		owned[strings.ToLower(strings.TrimSpace(s))] = true
	}
	matched := 0
	for _, s := range required {
		if owned[strings.ToLower(strings.TrimSpace(s))] {
			matched++
		} else {
			missing = append(missing, s)
		}
	}
	return matched * 100 / len(required), missing
}

// experienceFit is full credit at or above the minimum and linear below it.
func experienceFit(years, minimum float64) int {
	if minimum <= 0 || years >= minimum {
		return 100
	}
	if years <= 0 {
		return 0
	}
	return int(math.Round(years / minimum * 100))
}

func educationLevel(text string) int {
	lower := strings.ToLower(text)
	for _, rung := range educationLadder {
		for _, kw := range rung.keywords {
			if strings.Contains(lower, kw) {
				return rung.level
			}
		}
	}
	return 0
}

func educationFit(candidate, required string) int {
	have := educationLevel(candidate)
	want := educationLevel(required)
	switch {
	case want == 0 && have > 0:
		return 100
	case want == 0:
		return 50
	case have >= want:
		return 100
	default:
		return have * 100 / want
	}
}

func profileCompleteness(c CandidateProfile) int {
	score := 0
	for _, present := range []bool{
		strings.TrimSpace(c.ResumeURL) != "",
		strings.TrimSpace(c.Headline) != "",
		strings.TrimSpace(c.Phone) != "",
		strings.TrimSpace(c.Location) != "",
	} {
		if present {
			score += 25
		}
	}
	return score
}

func classifyFit(score int) string {
	switch {
	case score >= 75:
		return FitStrong
	case score >= 50:
		return FitModerate
	default:
		return FitWeak
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
