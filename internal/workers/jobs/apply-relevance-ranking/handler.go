// internal/workers/jobs/apply-relevance-ranking/handler.go
package applyrelevanceranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "apply-relevance-ranking"
)

// Component weights; they sum to 100.
const (
	WeightSkills     = 40.0
	WeightLocation   = 20.0
	WeightExperience = 20.0
	WeightRecency    = 10.0
	WeightSalary     = 10.0

	recencyWindowDays = 30.0
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
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
		timer.Failed("RANKING_FAILED")
		camunda.FailJob(ctx, client, job, "RANKING_FAILED", err.Error(), 0, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()
	now := h.now()

	seen := make(map[string]bool)
	ranked := make([]RankedJob, 0, len(input.Jobs))
	posted := make(map[string]time.Time)

	for _, j := range input.Jobs {
		if j.ID == "" || seen[j.ID] {
			continue
		}
		seen[j.ID] = true

		postedAt, hasDate := parseTime(j.PostedAt)
		if hasDate {
			posted[j.ID] = postedAt
		}

		r := RankedJob{
			ID:              j.ID,
			Title:           j.Title,
			CompanyName:     j.CompanyName,
			PostedAt:        j.PostedAt,
			SkillsScore:     skillsScore(j.Skills, input.Candidate.Skills),
			LocationScore:   locationScore(j, input.Candidate.Locations),
			ExperienceScore: experienceScore(j.MinExperience, input.Candidate.ExperienceYears),
			RecencyScore:    recencyScore(postedAt, hasDate, now),
			SalaryScore:     salaryScore(j, input.Candidate.ExpectedSalary),
		}
		r.FinalScore = round2(r.SkillsScore + r.LocationScore + r.ExperienceScore + r.RecencyScore + r.SalaryScore)
		ranked = append(ranked, r)
	}

	// Ties go to the newest posting.
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].FinalScore != ranked[b].FinalScore {
			return ranked[a].FinalScore > ranked[b].FinalScore
		}
		return posted[ranked[a].ID].After(posted[ranked[b].ID])
	})

	total := len(ranked)
	maxItems := input.MaxItems
	if maxItems <= 0 {
		maxItems = h.config.MaxItems
	}
	if maxItems > 0 && len(ranked) > maxItems {
		ranked = ranked[:maxItems]
	}

	duration := time.Since(start).Milliseconds()
	h.logger.Info("ranking completed", map[string]interface{}{
		"inputCount":  len(input.Jobs),
		"outputCount": len(ranked),
		"durationMs":  duration,
	})
	if duration > 500 {
		h.logger.Warn("ranking exceeded 500ms", map[string]interface{}{
			"durationMs": duration,
		})
	}

	return &Output{RankedJobs: ranked, TotalCount: total}, nil
}

// skillsScore is the share of the job's skills the candidate has. Jobs without
// listed skills get half credit.
func skillsScore(jobSkills, candidateSkills []string) float64 {
	if len(jobSkills) == 0 {
		return WeightSkills / 2
	}
	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}
	matched := 0
	for _, s := range jobSkills {
		if have[strings.ToLower(strings.TrimSpace(s))] {
			matched++
		}
	}
	return round2(WeightSkills * float64(matched) / float64(len(jobSkills)))
}

func locationScore(j JobResult, preferred []string) float64 {
	if j.Remote {
		return WeightLocation
	}
	if len(preferred) == 0 {
		return WeightLocation / 2
	}
	loc := strings.ToLower(j.Location)
	for _, p := range preferred {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(loc, p) {
			return WeightLocation
		}
	}
	return 0
}

// experienceScore gives full credit at or above the minimum and scales linearly below it.
func experienceScore(required, actual int) float64 {
	if required <= 0 || actual >= required {
		return WeightExperience
	}
	if actual <= 0 {
		return 0
	}
	return round2(WeightExperience * float64(actual) / float64(required))
}

// recencyScore decays linearly to zero over thirty days.
func recencyScore(postedAt time.Time, ok bool, now time.Time) float64 {
	if !ok {
		return WeightRecency / 2
	}
	days := now.Sub(postedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return round2(WeightRecency * math.Max(0, 1-days/recencyWindowDays))
}

func salaryScore(j JobResult, expected int) float64 {
	top := j.SalaryMax
	if top == 0 {
		top = j.SalaryMin
	}
	if expected <= 0 || top <= 0 {
		return WeightSalary / 2
	}
	if top >= expected {
		return WeightSalary
	}
	return round2(WeightSalary * float64(top) / float64(expected))
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
