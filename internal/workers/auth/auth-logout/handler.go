package authlogout

import (
	"context"
	"fmt"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const TaskType = "auth-logout"

type Handler struct {
	config       *Config
	logger       logger.Logger
	service      *Service
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Redis        *redis.Client
	Keycloak     auth.IdentityProvider
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config: workerConfig,
		logger: log,
		service: NewService(ServiceDependencies{
			Redis:    opts.Redis,
			Keycloak: opts.Keycloak,
			Logger:   log,
		}, workerConfig),
		errorHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing logout request", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	if !h.config.Enabled {
		timer.Completed()
		camunda.CompleteJob(ctx, client, job, &Output{Success: false, Message: "worker disabled"}, h.logger)
		return
	}

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		output, err = h.service.Execute(ctx, input)
		if err == nil {
			timer.Completed()
			camunda.CompleteJob(ctx, client, job, output, h.logger)
			return
		}
	}

	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Failed(bpmnErr.Code)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("parse job variables: %v", err))
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewValidationError(fmt.Sprintf("validation errors: %v", result.GetErrorMessages()))
	}

	input := &Input{}
	input.UserID, _ = variables["userId"].(string)
	input.Token, _ = variables["token"].(string)
	input.SessionID, _ = variables["sessionId"].(string)
	input.LogoutAll, _ = variables["logoutAll"].(bool)
	input.Reason, _ = variables["reason"].(string)
	return input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}
