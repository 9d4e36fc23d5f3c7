// internal/workers/campus/submit-leave-application/models.go
package submitleaveapplication

type Input struct {
	StudentID  string `json:"studentId"`
	ApproverID string `json:"approverId"`
	FromDate   string `json:"fromDate"`
	ToDate     string `json:"toDate"`
	Reason     string `json:"reason"`
}

type Output struct {
	LeaveID  string `json:"leaveId"`
	Status   string `json:"status"`
	Days     int    `json:"days"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}
