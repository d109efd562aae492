// Package validator scores free-text drafts with a small set of heuristics
// and runs the structured checks of the creator and consultant tracks.
package validator

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusSoft Status = "soft"
	StatusFix  Status = "fix"
)

// FormatProposal enables the proposal-specific rule.
const FormatProposal = "proposal"

const (
	SuggestEmpty     = "Add your draft before validating."
	SuggestDetails   = "Add 2–3 concrete details or examples."
	SuggestBullets   = "Use 3–6 bullets to front‑load actions."
	SuggestFiller    = "Trim filler words (very/just/really)."
	SuggestHeading   = "Add one short heading for scannability."
	SuggestProposals = "For proposals, mention budget and timeline."
)

var (
	bulletRe   = regexp.MustCompile(`(?m)^\s*[-*•]`)
	headingRe  = regexp.MustCompile(`(?m)^#{1,3}\s+`)
	fillerRe   = regexp.MustCompile(`(?i)\b(very|just|really|nice|basically|literally)\b`)
	proposalRe = regexp.MustCompile(`(?i)budget|timeline`)
)

type Result struct {
	Status      Status   `json:"status"`
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// Counts are the raw signals a score is computed from. Length is measured in
// UTF-16 code units, the unit the drafting UI counts in.
type Counts struct {
	Length   int
	Bullets  int
	Headings int
	Filler   int
}

func Count(text string) Counts {
	return Counts{
		Length:   len(utf16.Encode([]rune(text))),
		Bullets:  len(bulletRe.FindAllStringIndex(text, -1)),
		Headings: len(headingRe.FindAllStringIndex(text, -1)),
		Filler:   len(fillerRe.FindAllStringIndex(text, -1)),
	}
}

// ValidateText scores a draft. It never fails.
func ValidateText(text string) Result {
	t := strings.TrimSpace(text)
	if t == "" {
		return Result{Status: StatusFix, Score: 0, Suggestions: []string{SuggestEmpty}}
	}

	c := Count(t)

	score := 0
	if c.Length >= 400 {
		score += 2
	}
	if c.Bullets >= 3 {
		score += 2
	}
	if c.Headings >= 1 {
		score++
	}
	if c.Filler > 5 {
		score -= 2
	}

	status := StatusSoft
	if score >= 3 {
		status = StatusPass
	} else if score <= 0 {
		status = StatusFix
	}

	suggestions := make([]string, 0, 4)
	if c.Length < 300 {
		suggestions = append(suggestions, SuggestDetails)
	}
	if c.Bullets < 3 {
		suggestions = append(suggestions, SuggestBullets)
	}
	if c.Filler > 5 {
		suggestions = append(suggestions, SuggestFiller)
	}
	if c.Headings == 0 {
		suggestions = append(suggestions, SuggestHeading)
	}

	return Result{Status: status, Score: score, Suggestions: suggestions}
}

// Validate scores text and applies the rules of format. Proposals that do
// not mention a budget or timeline cannot pass and always get a reminder.
func Validate(text, format string) Result {
	res := ValidateText(text)
	if format == FormatProposal && !proposalRe.MatchString(text) {
		if res.Status == StatusPass {
			res.Status = StatusSoft
		}
		res.Suggestions = append(res.Suggestions, SuggestProposals)
	}
	return res
}
