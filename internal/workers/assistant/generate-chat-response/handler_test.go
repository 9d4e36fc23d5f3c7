// internal/workers/assistant/generate-chat-response/handler_test.go
package generatechatresponse

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"job-portal-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestHandler_Execute_WithoutConversation(t *testing.T) {
	mr, client := setupRedis(t)
	handler := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{UserID: "u-1", Message: "Tips for my interview?"})
	require.NoError(t, err)
	assert.Equal(t, "interview", output.Topic)
	assert.Zero(t, output.HistoryLength)
	assert.Empty(t, mr.Keys())
}

func TestHandler_Execute_StoresHistory(t *testing.T) {
	mr, client := setupRedis(t)
	handler := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))
	ctx := context.Background()

	_, err := handler.Execute(ctx, &Input{ConversationID: "c-1", Message: "hi"})
	require.NoError(t, err)
	output, err := handler.Execute(ctx, &Input{ConversationID: "c-1", Message: "how much should I ask for salary"})
	require.NoError(t, err)

	assert.Equal(t, "salary", output.Topic)
	assert.Equal(t, int64(4), output.HistoryLength)
	assert.Equal(t, 24*time.Hour, mr.TTL("chat:c-1"))

	history, err := handler.History(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "assistant", history[3].Role)
}

func TestHandler_Execute_TrimsHistory(t *testing.T) {
	_, client := setupRedis(t)
	cfg := LoadConfig()
	cfg.MaxHistory = 6
	handler := NewHandler(cfg, client, logger.NewTestLogger(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := handler.Execute(ctx, &Input{ConversationID: "c-2", Message: fmt.Sprintf("message %d", i)})
		require.NoError(t, err)
	}

	history, err := handler.History(ctx, "c-2")
	require.NoError(t, err)
	require.Len(t, history, 6)
	assert.Equal(t, "message 2", history[0].Content)
}

func TestHandler_Execute_Errors(t *testing.T) {
	mr, client := setupRedis(t)
	handler := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{ConversationID: "c-3", Message: " "})
	assert.True(t, errors.Is(err, ErrValidationFailed))

	mr.Close()
	_, err = handler.Execute(context.Background(), &Input{ConversationID: "c-3", Message: "hello"})
	assert.True(t, errors.Is(err, ErrCacheError))
}
