// internal/workers/moderation/check-job-authenticity/models.go
package checkjobauthenticity

type Input struct {
	JobID        string `json:"jobId,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CompanyName  string `json:"companyName"`
	ContactEmail string `json:"contactEmail"`
	Salary       string `json:"salary"`
	Location     string `json:"location"`
}

type Output struct {
	AuthenticityScore int      `json:"authenticityScore"`
	RiskLevel         string   `json:"riskLevel"`
	Flags             []string `json:"flags"`
	IsAuthentic       bool     `json:"isAuthentic"`
	CheckedAt         string   `json:"checkedAt"`
}
