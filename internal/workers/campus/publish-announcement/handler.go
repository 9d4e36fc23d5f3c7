// internal/workers/campus/publish-announcement/handler.go
package publishannouncement

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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const TaskType = "publish-announcement"

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrGroupNotFound    = errors.New("GROUP_NOT_FOUND")
	ErrPublishFailed    = errors.New("ANNOUNCEMENT_PUBLISH_FAILED")
	ErrDatabase         = errors.New("DATABASE_CONNECTION_FAILED")
)

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	db        *sql.DB
	snsClient SNSService
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		var errorCode string
		var retries int32
		switch {
		case errors.Is(err, ErrGroupNotFound):
			errorCode = "GROUP_NOT_FOUND"
		case errors.Is(err, ErrPublishFailed):
			// the announcement row exists already, so no retry
			errorCode = "ANNOUNCEMENT_PUBLISH_FAILED"
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		default:
			errorCode = "DATABASE_CONNECTION_FAILED"
			retries = 3
		}
		timer.Failed(errorCode)
		camunda.FailJob(ctx, client, job, errorCode, err.Error(), retries, h.logger)
		return
	}

	timer.Completed()
	camunda.CompleteJob(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	groupIDs := dedupe(input.GroupIDs)
	if input.AuthorID == "" || input.Title == "" || input.Body == "" {
		return nil, fmt.Errorf("%w: authorId, title and body are required", ErrValidationFailed)
	}
	if len(groupIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one groupId is required", ErrValidationFailed)
	}

	groups, err := h.loadGroups(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	ann := models.Announcement{
		ID:        uuid.New().String(),
		AuthorID:  input.AuthorID,
		Title:     input.Title,
		Body:      input.Body,
		GroupIDs:  groupIDs,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO announcements (id, author_id, title, body, group_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ann.ID, ann.AuthorID, ann.Title, ann.Body, pq.Array(ann.GroupIDs), ann.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert announcement: %v", ErrDatabase, err)
	}

	deliveries := h.fanOut(ctx, ann, groups)

	out := &Output{AnnouncementID: ann.ID, Deliveries: deliveries, CreatedAt: ann.CreatedAt}
	attempted := 0
	for _, d := range deliveries {
		switch d.Status {
		case DeliveryPublished:
			out.PublishedCount++
			attempted++
		case DeliveryFailed:
			out.FailedCount++
			attempted++
		}
	}

	h.logger.Info("announcement published", map[string]interface{}{
		"announcementId": ann.ID,
		"groups":         len(groups),
		"published":      out.PublishedCount,
		"failed":         out.FailedCount,
	})

	if attempted > 0 && out.PublishedCount == 0 {
		return nil, fmt.Errorf("%w: all %d publishes failed for announcement %s", ErrPublishFailed, attempted, ann.ID)
	}
	return out, nil
}

func (h *Handler) loadGroups(ctx context.Context, ids []string) ([]models.Group, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(topic_arn, '') FROM groups WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: load groups: %v", ErrDatabase, err)
	}
	defer rows.Close()

	found := make(map[string]models.Group, len(ids))
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.TopicArn); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		found[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	groups := make([]models.Group, 0, len(ids))
	for _, id := range ids {
		g, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, id)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// fanOut publishes to every group topic concurrently. Results keep the group order.
func (h *Handler) fanOut(ctx context.Context, ann models.Announcement, groups []models.Group) []Delivery {
	deliveries := make([]Delivery, len(groups))

	var g errgroup.Group
	if h.config.MaxParallel > 0 {
		g.SetLimit(h.config.MaxParallel)
	}

	for i, group := range groups {
		i, group := i, group
		if group.TopicArn == "" || h.snsClient == nil {
			deliveries[i] = Delivery{GroupID: group.ID, Status: DeliveryNoTopic}
			continue
		}

		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, h.config.PublishTimeout)
			defer cancel()

			res, err := h.snsClient.Publish(pctx, &sns.PublishInput{
				TopicArn: aws.String(group.TopicArn),
				Subject:  aws.String(ann.Title),
				Message:  aws.String(ann.Body),
				MessageAttributes: map[string]snstypes.MessageAttributeValue{
					"announcementId": {DataType: aws.String("String"), StringValue: aws.String(ann.ID)},
				},
			})
			if err != nil {
				h.logger.Warn("announcement publish failed", map[string]interface{}{
					"groupId": group.ID,
					"error":   err.Error(),
				})
				deliveries[i] = Delivery{GroupID: group.ID, Status: DeliveryFailed, Error: err.Error()}
				return nil
			}
			deliveries[i] = Delivery{GroupID: group.ID, Status: DeliveryPublished, MessageID: aws.ToString(res.MessageId)}
			return nil
		})
	}

	_ = g.Wait()
	return deliveries
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
