// internal/workers/messaging/send-message/models.go
package sendmessage

type Input struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	// ConversationID is optional. When set it must belong to the two participants.
	ConversationID string `json:"conversationId,omitempty"`
	Body           string `json:"body"`
}

type Output struct {
	MessageID           string `json:"messageId"`
	ConversationID      string `json:"conversationId"`
	ConversationCreated bool   `json:"conversationCreated"`
	Flagged             bool   `json:"flagged"`
	ToxicityScore       int    `json:"toxicityScore"`
	SentAt              string `json:"sentAt"`
}
