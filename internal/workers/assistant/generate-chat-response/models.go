// internal/workers/assistant/generate-chat-response/models.go
package generatechatresponse

type Input struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId,omitempty"`
	Message        string `json:"message"`
}

type Output struct {
	Reply         string `json:"reply"`
	Topic         string `json:"topic"`
	HistoryLength int64  `json:"historyLength"`
	RespondedAt   string `json:"respondedAt"`
}

// HistoryEntry is one element of the chat:<conversationId> list.
type HistoryEntry struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
	At      string `json:"at"`
}
