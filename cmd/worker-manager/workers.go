// cmd/worker-manager/workers.go
package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"job-portal-workers/internal/common/auth"
	awsclient "job-portal-workers/internal/common/aws"
	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/database"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/observability"

	// Infrastructure
	br "job-portal-workers/internal/workers/infrastructure/build-response"
	st "job-portal-workers/internal/workers/infrastructure/select-template"
	vs "job-portal-workers/internal/workers/infrastructure/validate-subscription"

	// Data access
	qe "job-portal-workers/internal/workers/data-access/query-elasticsearch"
	qp "job-portal-workers/internal/workers/data-access/query-postgresql"

	// Jobs
	arr "job-portal-workers/internal/workers/jobs/apply-relevance-ranking"
	cjp "job-portal-workers/internal/workers/jobs/create-job-posting"
	psf "job-portal-workers/internal/workers/jobs/parse-search-filters"
	tsj "job-portal-workers/internal/workers/jobs/toggle-saved-job"

	// Applications
	car "job-portal-workers/internal/workers/application/create-application-record"
	scf "job-portal-workers/internal/workers/application/score-candidate-fit"
	sn "job-portal-workers/internal/workers/application/send-notification"
	uas "job-portal-workers/internal/workers/application/update-application-status"
	vad "job-portal-workers/internal/workers/application/validate-application-data"

	// Profiles
	lp "job-portal-workers/internal/workers/profile/load-profile"
	sp "job-portal-workers/internal/workers/profile/save-profile"

	// Mock AI
	gcr "job-portal-workers/internal/workers/assistant/generate-chat-response"
	ac "job-portal-workers/internal/workers/moderation/analyze-content"
	cja "job-portal-workers/internal/workers/moderation/check-job-authenticity"

	// BGV
	rbd "job-portal-workers/internal/workers/bgv/review-bgv-document"
	sbd "job-portal-workers/internal/workers/bgv/submit-bgv-document"

	// Campus
	mgm "job-portal-workers/internal/workers/campus/manage-group-membership"
	pa "job-portal-workers/internal/workers/campus/publish-announcement"
	rla "job-portal-workers/internal/workers/campus/review-leave-application"
	sla "job-portal-workers/internal/workers/campus/submit-leave-application"

	// Messaging, auth and communication
	alo "job-portal-workers/internal/workers/auth/auth-logout"
	asl "job-portal-workers/internal/workers/auth/auth-signin-linkedin"
	cv "job-portal-workers/internal/workers/auth/captcha-verify"
	ru "job-portal-workers/internal/workers/auth/register-user"
	es "job-portal-workers/internal/workers/communication/email-send"
	sm "job-portal-workers/internal/workers/messaging/send-message"
)

// dependencies are the shared clients handed to worker constructors.
type dependencies struct {
	DB       *sql.DB
	Redis    *redis.Client
	Search   *database.ElasticsearchClient
	SES      *awsclient.SESClient
	SNS      *awsclient.SNSClient
	Keycloak auth.IdentityProvider
}

type registrar struct {
	cfg  *config.Config
	pool *camunda.WorkerPool
	obs  *observability.Observability
	log  logger.Logger
}

// open starts taskType unless the workers section disables it.
func (r *registrar) open(taskType string, handler worker.JobHandler) error {
	if !config.IsWorkerEnabled(r.cfg, taskType) {
		r.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}
	wcfg := config.GetWorkerConfig(r.cfg, taskType)
	return r.pool.Open(camunda.WorkerSpec{
		TaskType:      taskType,
		Handler:       traced(r.obs, taskType, handler),
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       config.GetDuration(wcfg.Timeout),
	})
}

func registerWorkers(cfg *config.Config, deps dependencies, pool *camunda.WorkerPool, obs *observability.Observability, log logger.Logger) error {
	r := &registrar{cfg: cfg, pool: pool, obs: obs, log: log}

	handlers, err := buildHandlers(cfg, deps, log)
	if err != nil {
		return err
	}
	for _, h := range handlers {
		if err := r.open(h.taskType, h.handle); err != nil {
			return err
		}
	}
	return nil
}

type namedHandler struct {
	taskType string
	handle   worker.JobHandler
}

func buildHandlers(cfg *config.Config, deps dependencies, log logger.Logger) ([]namedHandler, error) {
	// --- Infrastructure ---
	brCfg := br.LoadConfig()
	brCfg.TemplateRegistry = cfg.Template.RegistryPath
	brCfg.CacheTTL = time.Duration(cfg.Template.CacheTTL) * time.Second
	brCfg.AppVersion = cfg.App.Version

	stCfg := st.LoadConfig()
	if len(cfg.Template.Rules) > 0 {
		rules, err := st.FlattenRules(cfg.Template.Rules)
		if err != nil {
			return nil, fmt.Errorf("template rules: %w", err)
		}
		stCfg.Rules = rules
	}
	stCfg.Default = cfg.Template.Default

	// --- Data access and jobs ---
	qeCfg := qe.LoadConfig()
	qeCfg.JobsIndex = cfg.Database.Elasticsearch.JobsIndex
	qeCfg.CandidatesIndex = cfg.Database.Elasticsearch.CandidatesIndex

	cjpCfg := cjp.LoadConfig()
	cjpCfg.IndexName = cfg.Database.Elasticsearch.JobsIndex
	if deps.Search == nil {
		return nil, fmt.Errorf("elasticsearch client is required")
	}

	// --- Notifications ---
	snCfg := sn.LoadConfig()
	snCfg.EmailEnabled = cfg.Notifications.Email.Enabled
	snCfg.SMSEnabled = cfg.Notifications.SMS.Enabled
	if cfg.Notifications.Email.FromEmail != "" {
		snCfg.FromEmail = cfg.Notifications.Email.FromEmail
	}
	snCfg.RatePerSecond = cfg.Notifications.RatePerSecond
	snCfg.Burst = cfg.Notifications.Burst

	// --- Service-style workers ---
	logout, err := alo.NewHandler(alo.HandlerOptions{
		AppConfig: cfg,
		Redis:     deps.Redis,
		Keycloak:  deps.Keycloak,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create auth-logout handler: %w", err)
	}
	captcha, err := cv.NewHandler(cv.HandlerOptions{
		AppConfig: cfg,
		Redis:     deps.Redis,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create captcha-verify handler: %w", err)
	}
	register, err := ru.NewHandler(ru.HandlerOptions{
		AppConfig: cfg,
		DB:        deps.DB,
		Keycloak:  deps.Keycloak,
		Captcha:   captcha,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create register-user handler: %w", err)
	}
	linkedin, err := asl.NewHandler(asl.HandlerOptions{
		AppConfig: cfg,
		DB:        deps.DB,
		Keycloak:  deps.Keycloak,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create auth-signin-linkedin handler: %w", err)
	}
	email, err := es.NewHandler(es.HandlerOptions{
		AppConfig: cfg,
		SES:       deps.SES,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email-send handler: %w", err)
	}

	return []namedHandler{
		{vs.TaskType, vs.NewHandler(vs.LoadConfig(), deps.DB, deps.Redis, log).Handle},
		{br.TaskType, br.NewHandler(brCfg, log).Handle},
		{st.TaskType, st.NewHandler(stCfg, log).Handle},

		{qp.TaskType, qp.NewHandler(qp.LoadConfig(), deps.DB, log).Handle},
		{qe.TaskType, qe.NewHandler(qeCfg, deps.Search.Client, log).Handle},

		{psf.TaskType, psf.NewHandler(psf.LoadConfig(), log).Handle},
		{arr.TaskType, arr.NewHandler(arr.LoadConfig(), log).Handle},
		{cjp.TaskType, cjp.NewHandler(cjpCfg, deps.DB, deps.Search, log).Handle},
		{tsj.TaskType, tsj.NewHandler(tsj.LoadConfig(), deps.DB, log).Handle},

		{vad.TaskType, vad.NewHandler(vad.LoadConfig(), log).Handle},
		{scf.TaskType, scf.NewHandler(scf.LoadConfig(), log).Handle},
		{car.TaskType, car.NewHandler(car.LoadConfig(), deps.DB, log).Handle},
		{uas.TaskType, uas.NewHandler(uas.LoadConfig(), deps.DB, log).Handle},
		{sn.TaskType, sn.NewHandler(snCfg, deps.DB, deps.SES, deps.SNS, log).Handle},

		{lp.TaskType, lp.NewHandler(lp.LoadConfig(), deps.DB, log).Handle},
		{sp.TaskType, sp.NewHandler(sp.LoadConfig(), deps.DB, log).Handle},

		{cja.TaskType, cja.NewHandler(cja.LoadConfig(), log).Handle},
		{ac.TaskType, ac.NewHandler(ac.LoadConfig(), log).Handle},
		{gcr.TaskType, gcr.NewHandler(gcr.LoadConfig(), deps.Redis, log).Handle},

		{sbd.TaskType, sbd.NewHandler(sbd.LoadConfig(), deps.DB, log).Handle},
		{rbd.TaskType, rbd.NewHandler(rbd.LoadConfig(), deps.DB, log).Handle},

		{mgm.TaskType, mgm.NewHandler(mgm.LoadConfig(), deps.DB, log).Handle},
		{sla.TaskType, sla.NewHandler(sla.LoadConfig(), deps.DB, log).Handle},
		{rla.TaskType, rla.NewHandler(rla.LoadConfig(), deps.DB, log).Handle},
		{pa.TaskType, pa.NewHandler(pa.LoadConfig(), deps.DB, deps.SNS, log).Handle},

		{sm.TaskType, sm.NewHandler(sm.LoadConfig(), deps.DB, log).Handle},

		{alo.TaskType, logout.Handle},
		{asl.TaskType, linkedin.Handle},
		{cv.TaskType, captcha.Handle},
		{ru.TaskType, register.Handle},
		{es.TaskType, email.Handle},
	}, nil
}
