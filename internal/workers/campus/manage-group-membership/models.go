// internal/workers/campus/manage-group-membership/models.go
package managegroupmembership

const (
	ActionJoin  = "join"
	ActionLeave = "leave"
)

type Input struct {
	GroupID   string `json:"groupId"`
	ProfileID string `json:"profileId"`
	Action    string `json:"action"`
}

type Output struct {
	GroupID     string `json:"groupId"`
	ProfileID   string `json:"profileId"`
	IsMember    bool   `json:"isMember"`
	Changed     bool   `json:"changed"`
	MemberCount int    `json:"memberCount"`
}
