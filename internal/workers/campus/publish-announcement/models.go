// internal/workers/campus/publish-announcement/models.go
package publishannouncement

type Input struct {
	AuthorID string   `json:"authorId"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	GroupIDs []string `json:"groupIds"`
}

type Delivery struct {
	GroupID   string `json:"groupId"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Output struct {
	AnnouncementID string     `json:"announcementId"`
	Deliveries     []Delivery `json:"deliveries"`
	PublishedCount int        `json:"publishedCount"`
	FailedCount    int        `json:"failedCount"`
	CreatedAt      string     `json:"createdAt"`
}

const (
	DeliveryPublished = "published"
	DeliveryFailed    = "failed"
	DeliveryNoTopic   = "no_topic"
)
