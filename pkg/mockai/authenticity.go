// Package mockai holds the deterministic keyword and threshold rules that stand in
// for model-backed scoring, moderation and chat.
package mockai

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Penalties applied by CheckJobAuthenticity.
const (
	PenaltyBannedPhrase     = 15
	PenaltyShortTitle       = 10
	PenaltyLongTitle        = 5
	PenaltyVeryShortDesc    = 20
	PenaltyShortDesc        = 10
	PenaltyMissingCompany   = 15
	PenaltyFreeEmailContact = 10
)

var BannedPhrases = []string{
	"wire transfer",
	"registration fee",
	"pay to apply",
	"work from home and earn",
	"guaranteed income",
	"no experience needed",
	"earn money fast",
	"western union",
	"bitcoin",
	"processing fee",
}

var FreeEmailDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "aol.com", "mail.com", "protonmail.com",
}

type JobPosting struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	CompanyName  string `json:"companyName"`
	ContactEmail string `json:"contactEmail"`
	Salary       string `json:"salary"`
	Location     string `json:"location"`
}

type AuthenticityResult struct {
	Score     int      `json:"score"`
	RiskLevel string   `json:"riskLevel"`
	Flags     []string `json:"flags"`
}

// CheckJobAuthenticity starts at 100 and subtracts a fixed penalty per finding.
func CheckJobAuthenticity(job JobPosting) AuthenticityResult {
	score := 100
	flags := []string{}

	haystack := strings.ToLower(strings.Join([]string{job.Title, job.Description, job.Salary}, " "))
	for _, phrase := range BannedPhrases {
		if strings.Contains(haystack, phrase) {
			score -= PenaltyBannedPhrase
			flags = append(flags, fmt.Sprintf("contains suspicious phrase %q", phrase))
		}
	}

	titleLen := utf8.RuneCountInString(strings.TrimSpace(job.Title))
	switch {
	case titleLen < 10:
		score -= PenaltyShortTitle
		flags = append(flags, "title is too short")
	case titleLen > 100:
		score -= PenaltyLongTitle
		flags = append(flags, "title is unusually long")
	}

	descLen := utf8.RuneCountInString(strings.TrimSpace(job.Description))
	switch {
	case descLen < 50:
		score -= PenaltyVeryShortDesc
		flags = append(flags, "description is too short")
	case descLen < 150:
		score -= PenaltyShortDesc
		flags = append(flags, "description lacks detail")
	}

	if strings.TrimSpace(job.CompanyName) == "" {
		score -= PenaltyMissingCompany
		flags = append(flags, "company name is missing")
	}

	if isFreeEmail(job.ContactEmail) {
		score -= PenaltyFreeEmailContact
		flags = append(flags, "contact email uses a free webmail domain")
	}

	score = clamp(score, 0, 100)
	return AuthenticityResult{Score: score, RiskLevel: RiskLevel(score), Flags: flags}
}

// RiskLevel maps a score to low (>=80), medium (>=50) or high.
func RiskLevel(score int) string {
	switch {
	case score >= 80:
		return RiskLow
	case score >= 50:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func isFreeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for _, d := range FreeEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
