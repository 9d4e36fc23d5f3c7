package mockai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	ToxicityIncrement = 20
	// ToxicityThreshold is the first score considered inappropriate.
	ToxicityThreshold = 40
)

var ToxicKeywords = []string{
	"idiot", "stupid", "hate", "useless", "dumb", "shut up", "loser", "scam", "fraud", "worthless",
}

// Replacements feed the improvement suggestions. Keywords without an entry are flagged only.
var Replacements = map[string]string{
	"idiot":     "person",
	"stupid":    "unclear",
	"hate":      "dislike",
	"useless":   "unhelpful",
	"dumb":      "confusing",
	"shut up":   "please pause",
	"worthless": "not valuable",
}

type ContentAnalysis struct {
	ToxicityScore int      `json:"toxicityScore"`
	IsAppropriate bool     `json:"isAppropriate"`
	FlaggedTerms  []string `json:"flaggedTerms"`
	Suggestions   []string `json:"suggestions"`
	ImprovedText  string   `json:"improvedText"`
	WordCount     int      `json:"wordCount"`
}

// CalculateToxicityScore adds a fixed increment for each keyword present, capped at 100.
func CalculateToxicityScore(text string) int {
	score, _ := toxicity(text)
	return score
}

func toxicity(text string) (int, []string) {
	lower := strings.ToLower(text)
	score := 0
	flagged := []string{}
	for _, kw := range ToxicKeywords {
		if strings.Contains(lower, kw) {
			score += ToxicityIncrement
			flagged = append(flagged, kw)
		}
	}
	if score > 100 {
		score = 100
	}
	return score, flagged
}

// AnalyzeContent scores text and proposes a rewrite with flagged words replaced.
func AnalyzeContent(text string) ContentAnalysis {
	score, flagged := toxicity(text)

	suggestions := []string{}
	improved := text
	for _, kw := range flagged {
		repl, ok := Replacements[kw]
		if !ok {
			continue
		}
		suggestions = append(suggestions, fmt.Sprintf("Consider replacing '%s' with '%s'", kw, repl))
		improved = replaceFold(improved, kw, repl)
	}

	return ContentAnalysis{
		ToxicityScore: score,
		IsAppropriate: score < ToxicityThreshold,
		FlaggedTerms:  flagged,
		Suggestions:   suggestions,
		ImprovedText:  improved,
		WordCount:     len(strings.Fields(text)),
	}
}

// AnalyzeHTML reduces markup to its text before analysis.
func AnalyzeHTML(html string) (ContentAnalysis, error) {
	text, err := HTMLToText(html)
	if err != nil {
		return ContentAnalysis{}, err
	}
	return AnalyzeContent(text), nil
}

// HTMLToText drops tags, scripts and styles and collapses whitespace.
func HTMLToText(html string) (string, error) {
	if !strings.ContainsAny(html, "<>") {
		return html, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

func replaceFold(s, old, repl string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(old))
	return re.ReplaceAllLiteralString(s, repl)
}
