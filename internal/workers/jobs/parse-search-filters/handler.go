// internal/workers/jobs/parse-search-filters/handler.go
package parsesearchfilters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-search-filters"

var ErrInvalidFilterFormat = errors.New("INVALID_FILTER_FORMAT")

var validSortOptions = map[string]bool{
	"relevance": true, "date": true, "salary": true,
}

const maxExperienceYears = 50

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
		timer.Failed("INVALID_FILTER_FORMAT")
		camunda.FailJob(ctx, client, job, "INVALID_FILTER_FORMAT", err.Error(), 0, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

// execute normalizes every filter it can. Bad values are dropped and reported in
// InvalidFilters; only ranges that cannot be parsed at all fail the job.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	raw := input.RawFilters
	if raw == nil {
		raw = make(map[string]interface{})
	}

	parsed := ParsedFilters{
		Locations:       []string{},
		JobTypes:        []string{},
		Skills:          []string{},
		SortBy:          "relevance",
		Pagination:      Pagination{Page: 1, Size: 20},
		SalaryRange:     IntRange{Min: 0, Max: h.config.MaxSalary},
		ExperienceRange: IntRange{Min: 0, Max: maxExperienceYears},
	}
	invalid := make(map[string]string)

	if s, ok := raw["keywords"].(string); ok {
		parsed.Keywords = strings.Join(strings.Fields(s), " ")
	}

	if v, ok := raw["locations"]; ok {
		parsed.Locations = titleCase(parseStringArray(v))
	}

	if v, ok := raw["jobTypes"]; ok {
		for _, jt := range parseStringArray(v) {
			normalized := strings.ReplaceAll(strings.ToLower(jt), "_", "-")
			if models.JobType(normalized).Valid() {
				parsed.JobTypes = append(parsed.JobTypes, normalized)
			} else {
				invalid["jobTypes"] = fmt.Sprintf("unsupported job type %q", jt)
			}
		}
	}

	if v, ok := raw["salaryRange"]; ok {
		r, err := parseRange(v, parsed.SalaryRange, parseSalary)
		if err != nil {
			return nil, fmt.Errorf("%w: salaryRange: %v", ErrInvalidFilterFormat, err)
		}
		parsed.SalaryRange = r
	}

	if v, ok := raw["experienceRange"]; ok {
		r, err := parseRange(v, parsed.ExperienceRange, parseInt)
		if err != nil {
			return nil, fmt.Errorf("%w: experienceRange: %v", ErrInvalidFilterFormat, err)
		}
		if r.Max > maxExperienceYears {
			r.Max = maxExperienceYears
		}
		parsed.ExperienceRange = r
	}

	switch v := raw["remote"].(type) {
	case nil:
	case bool:
		parsed.Remote = &v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			parsed.Remote = &b
		} else {
			invalid["remote"] = fmt.Sprintf("not a boolean: %q", v)
		}
	default:
		invalid["remote"] = fmt.Sprintf("unexpected type %T", v)
	}

	if v, ok := raw["skills"]; ok {
		for _, s := range parseStringArray(v) {
			parsed.Skills = appendUnique(parsed.Skills, strings.ToLower(s))
		}
	}

	if s, ok := raw["sortBy"].(string); ok {
		s = strings.ToLower(strings.TrimSpace(s))
		if validSortOptions[s] {
			parsed.SortBy = s
		} else {
			invalid["sortBy"] = fmt.Sprintf("unsupported sort %q", s)
		}
	}

	if pg, ok := raw["pagination"].(map[string]interface{}); ok {
		if page, err := parseInt(pg["page"]); err == nil && page >= 1 {
			parsed.Pagination.Page = page
		}
		if size, err := parseInt(pg["size"]); err == nil && size >= 1 {
			if size > 100 {
				size = 100
			}
			parsed.Pagination.Size = size
		}
	}

	h.logger.Info("filters parsed successfully", map[string]interface{}{
		"keywords":       parsed.Keywords,
		"locations":      parsed.Locations,
		"jobTypes":       parsed.JobTypes,
		"salaryRange":    parsed.SalaryRange,
		"sortBy":         parsed.SortBy,
		"invalidFilters": len(invalid),
	})

	return &Output{ParsedFilters: parsed, InvalidFilters: invalid}, nil
}

// parseRange reads {"min": x, "max": y}; missing bounds keep their defaults.
func parseRange(raw interface{}, defaults IntRange, parse func(interface{}) (int, error)) (IntRange, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return defaults, fmt.Errorf("expected an object with min and max, got %T", raw)
	}
	r := defaults
	if v, exists := m["min"]; exists && v != nil {
		n, err := parse(v)
		if err != nil {
			return defaults, fmt.Errorf("min: %v", err)
		}
		r.Min = n
	}
	if v, exists := m["max"]; exists && v != nil {
		n, err := parse(v)
		if err != nil {
			return defaults, fmt.Errorf("max: %v", err)
		}
		r.Max = n
	}
	if r.Min > r.Max {
		return defaults, fmt.Errorf("min (%d) > max (%d)", r.Min, r.Max)
	}
	return r, nil
}

var salaryPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([kml]|lpa|lakh|lakhs)?$`)

// parseSalary accepts numbers and strings such as "50000", "50k", "1.2m", "12 lpa".
func parseSalary(raw interface{}) (int, error) {
	s, ok := raw.(string)
	if !ok {
		return parseInt(raw)
	}
	cleaned := strings.ToLower(strings.TrimSpace(s))
	for _, r := range []string{"$", "₹", "usd", "inr", ",", " "} {
		cleaned = strings.ReplaceAll(cleaned, r, "")
	}
	m := salaryPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, fmt.Errorf("cannot parse salary %q", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	switch m[2] {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	case "l", "lpa", "lakh", "lakhs":
		value *= 100_000
	}
	return int(value), nil
}

func parseInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 || v != float64(int(v)) {
			return 0, errors.New("not a valid positive integer")
		}
		return int(v), nil
	case int:
		if v < 0 {
			return 0, errors.New("negative integer not allowed")
		}
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("not a valid positive integer: %q", v)
		}
		return n, nil
	default:
		return 0, errors.New("not a number")
	}
}

// parseStringArray accepts a comma separated string or a list and drops blanks and duplicates.
func parseStringArray(raw interface{}) []string {
	result := []string{}
	switch v := raw.(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			result = appendUnique(result, strings.TrimSpace(s))
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = appendUnique(result, strings.TrimSpace(s))
			}
		}
	}
	return result
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if strings.EqualFold(existing, s) {
			return list
		}
	}
	return append(list, s)
}

func titleCase(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		words := strings.Fields(strings.ToLower(s))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		out = appendUnique(out, strings.Join(words, " "))
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
