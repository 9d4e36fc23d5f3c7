// internal/workers/campus/review-leave-application/models.go
package reviewleaveapplication

type Input struct {
	LeaveID    string `json:"leaveId"`
	ReviewerID string `json:"reviewerId"`
	Decision   string `json:"decision"`
	Remarks    string `json:"remarks,omitempty"`
}

type Output struct {
	LeaveID    string `json:"leaveId"`
	StudentID  string `json:"studentId"`
	Status     string `json:"status"`
	ReviewedAt string `json:"reviewedAt"`
}
