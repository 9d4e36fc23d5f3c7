// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/database"
	"job-portal-workers/internal/common/logger"

	createapplicationrecord "job-portal-workers/internal/workers/application/create-application-record"
	scorecandidatefit "job-portal-workers/internal/workers/application/score-candidate-fit"
	updateapplicationstatus "job-portal-workers/internal/workers/application/update-application-status"
	generatechatresponse "job-portal-workers/internal/workers/assistant/generate-chat-response"
	captchaverify "job-portal-workers/internal/workers/auth/captcha-verify"
	querypostgresql "job-portal-workers/internal/workers/data-access/query-postgresql"
	selecttemplate "job-portal-workers/internal/workers/infrastructure/select-template"
	validatesubscription "job-portal-workers/internal/workers/infrastructure/validate-subscription"
	createjobposting "job-portal-workers/internal/workers/jobs/create-job-posting"
	togglesavedjob "job-portal-workers/internal/workers/jobs/toggle-saved-job"
	analyzecontent "job-portal-workers/internal/workers/moderation/analyze-content"
	checkjobauthenticity "job-portal-workers/internal/workers/moderation/check-job-authenticity"
	loadprofile "job-portal-workers/internal/workers/profile/load-profile"
	saveprofile "job-portal-workers/internal/workers/profile/save-profile"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

// TestMain runs only when E2E_ZEEBE_ADDRESS points at a running stack
// (Zeebe, PostgreSQL, Elasticsearch and Redis from configs/config.yaml).
func TestMain(m *testing.M) {
	address := os.Getenv("E2E_ZEEBE_ADDRESS")
	if address == "" {
		fmt.Println("E2E_ZEEBE_ADDRESS not set, skipping e2e tests")
		os.Exit(0)
	}

	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
	})
	if err != nil {
		fmt.Printf("failed to connect to Zeebe: %v\n", err)
		os.Exit(1)
	}

	zapLog, _ = zap.NewDevelopment()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

type env struct {
	cfg *config.Config
	db  *sql.DB
	es  *elasticsearch.Client
	rdb *redis.Client
	log logger.Logger
}

func TestFullE2E(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	e := connect(t, cfg)
	createDatabaseTables(t, e.db)

	runID := fmt.Sprintf("%d", time.Now().UnixNano())
	employerID := "e2e-employer-" + runID
	candidateID := "e2e-candidate-" + runID
	seedEmployer(t, e.db, employerID)

	var jobID string
	t.Run("job posting", func(t *testing.T) {
		jobID = testJobPosting(t, e, employerID)
	})
	require.NotEmpty(t, jobID)

	t.Run("candidate profile", func(t *testing.T) { testCandidateProfile(t, e, candidateID) })
	t.Run("saved jobs", func(t *testing.T) { testToggleSavedJob(t, e, candidateID, jobID) })
	t.Run("application", func(t *testing.T) { testApplication(t, e, employerID, candidateID, jobID) })
	t.Run("notification template", func(t *testing.T) { testSelectTemplate(t, e) })
	t.Run("assistant", func(t *testing.T) { testChat(t, e, candidateID) })
	t.Run("sign-up captcha", func(t *testing.T) { testCaptcha(t, e) })
}

func connect(t *testing.T, cfg *config.Config) *env {
	t.Helper()
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Cleanup(func() { pg.Close() })

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Cleanup(func() { rdb.Close() })

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(), "Elasticsearch ping failed")

	require.NoError(t, camunda.NewClientFromZeebe(zeebeClient).HealthCheck(ctx), "Zeebe topology request failed")

	return &env{
		cfg: cfg,
		db:  pg.GetDB(),
		es:  es.Client,
		rdb: rdb.GetClient(),
		log: logger.NewZapAdapter(zapLog),
	}
}

// createDatabaseTables creates the subset of the portal schema the flow touches.
func createDatabaseTables(t *testing.T, db *sql.DB) {
	t.Helper()
	queries := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255),
			full_name VARCHAR(255),
			role VARCHAR(50) NOT NULL,
			phone VARCHAR(50),
			avatar_url TEXT,
			location VARCHAR(255),
			bio TEXT,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS candidate_profiles (
			profile_id VARCHAR(255) PRIMARY KEY REFERENCES profiles(id),
			headline VARCHAR(255),
			skills TEXT[],
			experience_years INTEGER,
			resume_url TEXT,
			education TEXT,
			expected_salary INTEGER,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS employer_profiles (
			profile_id VARCHAR(255) PRIMARY KEY REFERENCES profiles(id),
			company_name VARCHAR(255),
			company_website TEXT,
			industry VARCHAR(255),
			company_size VARCHAR(50),
			designation VARCHAR(255),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS employer_subscriptions (
			employer_id VARCHAR(255) PRIMARY KEY,
			plan VARCHAR(50) NOT NULL,
			status VARCHAR(50) NOT NULL,
			expires_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id VARCHAR(255) PRIMARY KEY,
			employer_id VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			company_name VARCHAR(255),
			location VARCHAR(255),
			job_type VARCHAR(50),
			remote BOOLEAN DEFAULT false,
			salary_min INTEGER,
			salary_max INTEGER,
			experience_min INTEGER,
			skills TEXT[],
			status VARCHAR(50) NOT NULL,
			risk_level VARCHAR(20),
			applicant_count INTEGER DEFAULT 0,
			posted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS saved_jobs (
			candidate_id VARCHAR(255) NOT NULL,
			job_id VARCHAR(255) NOT NULL,
			saved_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (candidate_id, job_id)
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id VARCHAR(255) PRIMARY KEY,
			candidate_id VARCHAR(255) NOT NULL,
			job_id VARCHAR(255) NOT NULL,
			cover_letter TEXT,
			resume_bucket VARCHAR(100),
			resume_path TEXT,
			answers JSONB,
			fit_score INTEGER,
			status VARCHAR(50) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE (candidate_id, job_id)
		)`,
		`CREATE TABLE IF NOT EXISTS application_status_history (
			id SERIAL PRIMARY KEY,
			application_id VARCHAR(255) NOT NULL,
			from_status VARCHAR(50),
			to_status VARCHAR(50),
			changed_by VARCHAR(255),
			note TEXT,
			changed_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id SERIAL PRIMARY KEY,
			event_type VARCHAR(100),
			resource_type VARCHAR(100),
			resource_id VARCHAR(255),
			details JSONB,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	}
	for _, q := range queries {
		_, err := db.Exec(q)
		require.NoError(t, err, "create table failed: %s", q)
	}
}

func seedEmployer(t *testing.T, db *sql.DB, employerID string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO profiles (id, email, full_name, role) VALUES ($1, $2, $3, 'employer')`,
		employerID, employerID+"@e2e.example", "E2E Employer")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO employer_profiles (profile_id, company_name) VALUES ($1, 'E2E Systems')`, employerID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO employer_subscriptions (employer_id, plan, status, expires_at)
		VALUES ($1, 'basic', 'active', NOW() + INTERVAL '30 days')`, employerID)
	require.NoError(t, err)
}

func testJobPosting(t *testing.T, e *env, employerID string) string {
	ctx := context.Background()

	sub, err := validatesubscription.NewHandler(validatesubscription.LoadConfig(), e.db, e.rdb, e.log).
		Execute(ctx, &validatesubscription.Input{EmployerID: employerID})
	require.NoError(t, err)
	assert.True(t, sub.CanPostJob)
	assert.Equal(t, "basic", sub.Plan)

	description := "Build Zeebe workers in Go with PostgreSQL and Redis. Hybrid role with a growing platform team."
	check, err := checkjobauthenticity.NewHandler(checkjobauthenticity.LoadConfig(), e.log).
		Execute(ctx, &checkjobauthenticity.Input{
			Title:        "Go Developer",
			Description:  description,
			CompanyName:  "E2E Systems",
			ContactEmail: "hr@e2e.example",
			Location:     "Pune",
		})
	require.NoError(t, err)
	assert.True(t, check.IsAuthentic)

	content, err := analyzecontent.NewHandler(analyzecontent.LoadConfig(), e.log).
		Execute(ctx, &analyzecontent.Input{ContentType: "job_description", Text: description})
	require.NoError(t, err)
	assert.True(t, content.IsAppropriate)

	cfg := createjobposting.LoadConfig()
	cfg.IndexName = e.cfg.Database.Elasticsearch.JobsIndex
	es, err := database.NewElasticsearch(e.cfg.Database.Elasticsearch)
	require.NoError(t, err)

	posted, err := createjobposting.NewHandler(cfg, e.db, es, e.log).Execute(ctx, &createjobposting.Input{
		EmployerID:  employerID,
		Title:       "Go Developer",
		Description: description,
		CompanyName: "E2E Systems",
		Location:    "Pune",
		JobType:     "full_time",
		SalaryMin:   1200000,
		SalaryMax:   2400000,
		Skills:      []string{"go", "postgres"},
		RiskLevel:   check.RiskLevel,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, posted.JobID)
	assert.True(t, posted.Indexed)
	return posted.JobID
}

func testCandidateProfile(t *testing.T, e *env, candidateID string) {
	ctx := context.Background()

	saved, err := saveprofile.NewHandler(saveprofile.LoadConfig(), e.db, e.log).Execute(ctx, &saveprofile.Input{
		Profile: map[string]interface{}{
			"id":              candidateID,
			"role":            "candidate",
			"fullName":        "E2E Candidate",
			"email":           candidateID + "@e2e.example",
			"location":        "Pune",
			"skills":          []interface{}{"go", "postgres", "redis"},
			"experienceYears": 3,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "candidate", saved.Role)

	loaded, err := loadprofile.NewHandler(loadprofile.LoadConfig(), e.db, e.log).
		Execute(ctx, &loadprofile.Input{ProfileID: candidateID})
	require.NoError(t, err)
	assert.Equal(t, "E2E Candidate", loaded.Profile["fullName"])
	assert.True(t, loaded.RoleProfileComplete)
}

func testToggleSavedJob(t *testing.T, e *env, candidateID, jobID string) {
	h := togglesavedjob.NewHandler(togglesavedjob.LoadConfig(), e.db, e.log)

	out, err := h.Execute(context.Background(), &togglesavedjob.Input{CandidateID: candidateID, JobID: jobID})
	require.NoError(t, err)
	assert.True(t, out.Saved)

	out, err = h.Execute(context.Background(), &togglesavedjob.Input{CandidateID: candidateID, JobID: jobID})
	require.NoError(t, err)
	assert.False(t, out.Saved)
}

func testApplication(t *testing.T, e *env, employerID, candidateID, jobID string) {
	ctx := context.Background()

	fit, err := scorecandidatefit.NewHandler(scorecandidatefit.LoadConfig(), e.log).Execute(ctx, &scorecandidatefit.Input{
		Candidate: scorecandidatefit.CandidateProfile{
			ID:              candidateID,
			Skills:          []string{"go", "postgres", "redis"},
			ExperienceYears: 3,
			Location:        "Pune",
		},
		Job: scorecandidatefit.JobRequirements{
			ID:             jobID,
			RequiredSkills: []string{"go", "postgres"},
		},
	})
	require.NoError(t, err)

	created, err := createapplicationrecord.NewHandler(createapplicationrecord.LoadConfig(), e.db, e.log).
		Execute(ctx, &createapplicationrecord.Input{
			CandidateID:   candidateID,
			JobID:         jobID,
			ValidatedData: map[string]interface{}{"coverLetter": "I build Go services."},
			FitScore:      fit.FitScore,
		})
	require.NoError(t, err)
	assert.Equal(t, employerID, created.EmployerID)

	_, err = createapplicationrecord.NewHandler(createapplicationrecord.LoadConfig(), e.db, e.log).
		Execute(ctx, &createapplicationrecord.Input{CandidateID: candidateID, JobID: jobID, FitScore: fit.FitScore})
	assert.ErrorIs(t, err, createapplicationrecord.ErrDuplicateApplication)

	updated, err := updateapplicationstatus.NewHandler(updateapplicationstatus.LoadConfig(), e.db, e.log).
		Execute(ctx, &updateapplicationstatus.Input{
			ApplicationID: created.ApplicationID,
			ActorID:       employerID,
			ToStatus:      "shortlisted",
		})
	require.NoError(t, err)
	assert.Equal(t, "applied", updated.PreviousStatus)

	out, err := querypostgresql.NewHandler(querypostgresql.LoadConfig(), e.db, e.log).
		Execute(ctx, &querypostgresql.Input{QueryType: "candidate_applications", CandidateID: candidateID})
	require.NoError(t, err)
	assert.Equal(t, 1, out.RowCount)
}

func testSelectTemplate(t *testing.T, e *env) {
	cfg := selecttemplate.LoadConfig()
	if len(e.cfg.Template.Rules) > 0 {
		rules, err := selecttemplate.FlattenRules(e.cfg.Template.Rules)
		require.NoError(t, err)
		cfg.Rules = rules
	}

	out, err := selecttemplate.NewHandler(cfg, e.log).Execute(context.Background(), &selecttemplate.Input{
		EventType: "status_changed",
		Role:      "candidate",
		Channel:   "email",
	})
	require.NoError(t, err)
	assert.Equal(t, "application-status-email", out.TemplateID)
}

func testChat(t *testing.T, e *env, candidateID string) {
	h := generatechatresponse.NewHandler(generatechatresponse.LoadConfig(), e.rdb, e.log)
	conversationID := "e2e-" + candidateID

	first, err := h.Execute(context.Background(), &generatechatresponse.Input{
		UserID:         candidateID,
		ConversationID: conversationID,
		Message:        "How do I improve my resume?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Reply)

	second, err := h.Execute(context.Background(), &generatechatresponse.Input{
		UserID:         candidateID,
		ConversationID: conversationID,
		Message:        "Any interview tips?",
	})
	require.NoError(t, err)
	assert.Greater(t, second.HistoryLength, first.HistoryLength)
}

func testCaptcha(t *testing.T, e *env) {
	h, err := captchaverify.NewHandler(captchaverify.HandlerOptions{AppConfig: e.cfg, Redis: e.rdb, Logger: e.log})
	require.NoError(t, err)
	ctx := context.Background()

	challenge, err := h.Issue(ctx, "203.0.113.9")
	require.NoError(t, err)

	wrong, err := h.Execute(ctx, &captchaverify.Input{CaptchaID: challenge.ID, CaptchaValue: "0000", ClientIP: "203.0.113.9"})
	require.NoError(t, err)
	assert.False(t, wrong.Valid)

	ok, err := h.Execute(ctx, &captchaverify.Input{CaptchaID: challenge.ID, CaptchaValue: challenge.Value, ClientIP: "203.0.113.9"})
	require.NoError(t, err)
	assert.True(t, ok.Valid)

	replay, err := h.Execute(ctx, &captchaverify.Input{CaptchaID: challenge.ID, CaptchaValue: challenge.Value, ClientIP: "203.0.113.9"})
	require.NoError(t, err)
	assert.Equal(t, captchaverify.ReasonAlreadyUsed, replay.Reason)
}

func BenchmarkHandler_CheckJobAuthenticity(b *testing.B) {
	handler := checkjobauthenticity.NewHandler(checkjobauthenticity.LoadConfig(), logger.NewNoOpLogger())
	input := &checkjobauthenticity.Input{
		Title:        "Data Entry",
		Description:  "Earn money fast from home, no experience needed. Pay a small registration fee.",
		CompanyName:  "",
		ContactEmail: "jobs@gmail.com",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}

func BenchmarkHandler_AnalyzeContent(b *testing.B) {
	handler := analyzecontent.NewHandler(analyzecontent.LoadConfig(), logger.NewNoOpLogger())
	input := &analyzecontent.Input{Text: "We are hiring backend engineers to build reliable job workers."}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Execute(context.Background(), input)
	}
}
