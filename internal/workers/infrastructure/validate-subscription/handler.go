// internal/workers/infrastructure/validate-subscription/handler.go
package validatesubscription

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "validate-subscription"

	statusActive = "active"
)

var (
	ErrSubscriptionInvalid     = errors.New("SUBSCRIPTION_INVALID")
	ErrSubscriptionExpired     = errors.New("SUBSCRIPTION_EXPIRED")
	ErrPlanLimitReached        = errors.New("PLAN_LIMIT_REACHED")
	ErrSubscriptionCheckFailed = errors.New("SUBSCRIPTION_CHECK_FAILED")
	ErrValidationFailed        = errors.New("VALIDATION_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
	if errors.Is(err, ErrPlanLimitReached) && output != nil {
		timer.Failed("PLAN_LIMIT_REACHED")
		camunda.ThrowErrorWithVariables(ctx, client, job, "PLAN_LIMIT_REACHED", err.Error(), output, h.logger)
		return
	}
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrSubscriptionInvalid):
			errorCode = "SUBSCRIPTION_INVALID"
		case errors.Is(err, ErrSubscriptionExpired):
			errorCode = "SUBSCRIPTION_EXPIRED"
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		case errors.Is(err, ErrSubscriptionCheckFailed):
			errorCode, retries = "SUBSCRIPTION_CHECK_FAILED", 3
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

// execute returns the usage snapshot together with ErrPlanLimitReached when the
// employer is at the limit. Handle throws that snapshot with the BPMN error.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	employerID := strings.TrimSpace(input.EmployerID)
	if employerID == "" {
		return nil, fmt.Errorf("%w: employerId is required", ErrValidationFailed)
	}

	sub, err := h.loadSubscription(ctx, employerID)
	if err != nil {
		return nil, err
	}

	plan, ok := models.Plans[sub.Plan]
	if !ok || sub.Status != statusActive {
		return nil, fmt.Errorf("%w: plan %q status %q", ErrSubscriptionInvalid, sub.Plan, sub.Status)
	}
	if sub.ExpiresAt != "" {
		exp, parseErr := time.Parse(time.RFC3339, sub.ExpiresAt)
		if parseErr != nil {
			h.logger.Debug("failed to parse expiration date, skipping expiration check", map[string]interface{}{
				"employerId": employerID,
				"expiresAt":  sub.ExpiresAt,
				"error":      parseErr.Error(),
			})
		} else if h.now().After(exp) {
			return nil, fmt.Errorf("%w: expired at %s", ErrSubscriptionExpired, sub.ExpiresAt)
		}
	}

	var activeJobs int
	err = h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE employer_id = $1 AND status IN ($2, $3)`,
		employerID, models.JobStatusActive, models.JobStatusPendingReview,
	).Scan(&activeJobs)
	if err != nil {
		return nil, fmt.Errorf("%w: count active jobs: %v", ErrSubscriptionCheckFailed, err)
	}

	output := &Output{
		IsValid:        true,
		Plan:           plan.Name,
		ActiveJobLimit: plan.ActiveJobLimit,
		ActiveJobs:     activeJobs,
		CanPostJob:     true,
		RemainingPosts: -1,
		ExpiresAt:      sub.ExpiresAt,
	}
	if plan.Unlimited() {
		return output, nil
	}

	output.RemainingPosts = plan.ActiveJobLimit - activeJobs
	if output.RemainingPosts <= 0 {
		output.RemainingPosts = 0
		output.CanPostJob = false
		return output, fmt.Errorf("%w: %d of %d active jobs on %s plan",
			ErrPlanLimitReached, activeJobs, plan.ActiveJobLimit, plan.Name)
	}
	return output, nil
}

// loadSubscription reads the plan through the Redis cache. Cache failures fall back to the database.
func (h *Handler) loadSubscription(ctx context.Context, employerID string) (*models.EmployerSubscription, error) {
	cacheKey := models.PlanCacheKey(employerID)
	if h.redis != nil {
		val, err := h.redis.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			var sub models.EmployerSubscription
			if jsonErr := json.Unmarshal([]byte(val), &sub); jsonErr == nil {
				return &sub, nil
			}
		case !errors.Is(err, redis.Nil):
			h.logger.Warn("plan cache read failed", map[string]interface{}{
				"employerId": employerID,
				"error":      err.Error(),
			})
		}
	}

	sub := models.EmployerSubscription{EmployerID: employerID}
	var expiresAt sql.NullTime
	err := h.db.QueryRowContext(ctx,
		`SELECT plan, status, expires_at FROM employer_subscriptions WHERE employer_id = $1`,
		employerID,
	).Scan(&sub.Plan, &sub.Status, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		sub.Plan = h.config.DefaultPlan
		sub.Status = statusActive
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrSubscriptionCheckFailed, err)
	}
	if expiresAt.Valid {
		sub.ExpiresAt = expiresAt.Time.UTC().Format(time.RFC3339)
	}

	if h.redis != nil {
		data, _ := json.Marshal(sub)
		if err := h.redis.Set(ctx, cacheKey, string(data), h.config.CacheTTL).Err(); err != nil {
			h.logger.Warn("plan cache write failed", map[string]interface{}{
				"employerId": employerID,
				"error":      err.Error(),
			})
		}
	}
	return &sub, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
