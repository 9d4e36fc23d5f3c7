// internal/workers/assistant/generate-chat-response/handler.go
package generatechatresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-portal-workers/internal/common/camunda"
	"job-portal-workers/internal/common/logger"
	"job-portal-workers/internal/common/metrics"
	"job-portal-workers/internal/models"
	"job-portal-workers/pkg/mockai"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const TaskType = "generate-chat-response"

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
	ErrCacheError       = errors.New("CACHE_ERROR")
)

type Handler struct {
	config *Config
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		redis:  redisClient,
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
		errorCode := "VALIDATION_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrCacheError) {
			errorCode = "CACHE_ERROR"
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
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidationFailed)
	}

	resp := mockai.GenerateChatResponse(message)
	now := time.Now().UTC().Format(time.RFC3339)
	output := &Output{Reply: resp.Reply, Topic: resp.Topic, RespondedAt: now}

	if input.ConversationID == "" {
		return output, nil
	}

	length, err := h.appendHistory(ctx, input.ConversationID,
		HistoryEntry{Role: "user", Content: message, At: now},
		HistoryEntry{Role: "assistant", Content: resp.Reply, At: now},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheError, err)
	}
	output.HistoryLength = length

	h.logger.Info("chat response generated", map[string]interface{}{
		"conversationId": input.ConversationID,
		"topic":          resp.Topic,
		"historyLength":  length,
	})
	return output, nil
}

// appendHistory pushes entries, trims to the newest MaxHistory and refreshes the TTL atomically.
func (h *Handler) appendHistory(ctx context.Context, conversationID string, entries ...HistoryEntry) (int64, error) {
	key := models.ChatKey(conversationID)

	values := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		raw, err := json.Marshal(e)
		if err != nil {
			return 0, err
		}
		values = append(values, raw)
	}

	var llen *redis.IntCmd
	_, err := h.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, -h.config.MaxHistory, -1)
		pipe.Expire(ctx, key, h.config.HistoryTTL)
		llen = pipe.LLen(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return llen.Val(), nil
}

// History returns the stored conversation, oldest first.
func (h *Handler) History(ctx context.Context, conversationID string) ([]HistoryEntry, error) {
	raw, err := h.redis.LRange(ctx, models.ChatKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(raw))
	for _, r := range raw {
		var e HistoryEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			h.logger.Warn("skipping malformed history entry", map[string]interface{}{"error": err})
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
