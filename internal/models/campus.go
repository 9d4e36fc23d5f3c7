// internal/models/campus.go
package models

var BGVDocTypes = []string{"id_proof", "address_proof", "education", "employment"}

const (
	BGVPending    = "pending"
	BGVVerified   = "verified"
	BGVRejected   = "rejected"
	BGVSuperseded = "superseded"
	BGVInProgress = "in_progress"
)

func ValidBGVDocType(docType string) bool {
	for _, t := range BGVDocTypes {
		if t == docType {
			return true
		}
	}
	return false
}

// OverallBGVStatus folds the latest status per doc type into one verdict.
func OverallBGVStatus(latest map[string]string) string {
	verified := 0
	for _, docType := range BGVDocTypes {
		switch latest[docType] {
		case BGVRejected:
			return BGVRejected
		case BGVVerified:
			verified++
		}
	}
	if verified == len(BGVDocTypes) {
		return BGVVerified
	}
	return BGVInProgress
}

type BGVDocument struct {
	ID          string  `json:"id"`
	CandidateID string  `json:"candidateId"`
	DocType     string  `json:"docType"`
	File        FileRef `json:"file"`
	Status      string  `json:"status"`
	Remarks     string  `json:"remarks,omitempty"`
	ReviewedBy  string  `json:"reviewedBy,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

type LeaveApplication struct {
	ID         string `json:"id"`
	StudentID  string `json:"studentId"`
	ApproverID string `json:"approverId"`
	FromDate   string `json:"fromDate"`
	ToDate     string `json:"toDate"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks,omitempty"`
}

type Announcement struct {
	ID        string   `json:"id"`
	AuthorID  string   `json:"authorId"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	GroupIDs  []string `json:"groupIds"`
	CreatedAt string   `json:"createdAt"`
}

type Group struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TopicArn string `json:"topicArn,omitempty"`
}

type Conversation struct {
	ID            string `json:"id"`
	ParticipantA  string `json:"participantA"`
	ParticipantB  string `json:"participantB"`
	LastMessageAt string `json:"lastMessageAt,omitempty"`
}

// OrderedPair returns the two participant ids in a stable order so one pair maps to one conversation.
func OrderedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Body           string `json:"body"`
	Flagged        bool   `json:"flagged"`
	CreatedAt      string `json:"createdAt"`
}
