package registeruser

import (
	"context"
	"database/sql"
	"fmt"

	"job-portal-workers/internal/common/auth"
	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/errors"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/common/validation"
	"job-portal-workers/internal/workers/profile/profilestore"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "register-user"

type Handler struct {
	config       *Config
	logger       logger.Logger
	service      *Service
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	DB           *sql.DB
	Keycloak     auth.IdentityProvider
	Captcha      CaptchaVerifier
	CustomConfig *Config
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Keycloak == nil {
		return nil, fmt.Errorf("%s requires a keycloak client", TaskType)
	}
	if workerConfig.RequireCaptcha && opts.Captcha == nil {
		return nil, fmt.Errorf("%s requires a captcha verifier when captcha is required", TaskType)
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
			Keycloak: opts.Keycloak,
			Profiles: profilestore.New(opts.DB),
			Captcha:  opts.Captcha,
			Logger:   log,
		}, workerConfig),
		errorHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing registration", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	if !h.config.Enabled {
		h.errorHandler.HandleJobError(ctx, client, job,
			errors.NewBusinessRuleError("Registration is disabled", TaskType))
		timer.Failed(string(errors.ErrCodeBusinessRule))
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
	input.Email, _ = variables["email"].(string)
	input.Password, _ = variables["password"].(string)
	input.FullName, _ = variables["fullName"].(string)
	input.Role, _ = variables["role"].(string)
	input.Phone, _ = variables["phone"].(string)
	input.CaptchaID, _ = variables["captchaId"].(string)
	input.CaptchaValue, _ = variables["captchaValue"].(string)
	input.ClientIP, _ = variables["clientIp"].(string)
	return input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}
