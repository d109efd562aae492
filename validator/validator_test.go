package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// draft builds a text with the given number of bullet lines, an optional
// heading and filler words, padded with a plain line to at least minLen.
func draft(minLen, bullets int, heading bool, filler []string) string {
	var sb strings.Builder
	if heading {
		sb.WriteString("# Plan\n")
	}
	for i := 0; i < bullets; i++ {
		sb.WriteString("- Ship the draft\n")
	}
	if len(filler) > 0 {
		sb.WriteString(strings.Join(filler, " "))
		sb.WriteString("\n")
	}
	if pad := minLen - sb.Len(); pad > 0 {
		sb.WriteString(strings.Repeat("a", pad))
	}
	return sb.String()
}

func TestValidateText_ScenarioA_Pass(t *testing.T) {
	text := draft(500, 4, true, nil)
	require.Equal(t, Counts{Length: 500, Bullets: 4, Headings: 1, Filler: 0}, Count(text))

	res := ValidateText(text)

	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, 5, res.Score)
	assert.NotNil(t, res.Suggestions)
	assert.Empty(t, res.Suggestions)
}

func TestValidateText_ScenarioB_Fix(t *testing.T) {
	res := ValidateText(strings.Repeat("a", 100))

	assert.Equal(t, StatusFix, res.Status)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, []string{SuggestDetails, SuggestBullets, SuggestHeading}, res.Suggestions)
}

func TestValidateText_ScenarioC_PassWithFillerHint(t *testing.T) {
	filler := []string{"very", "just", "Really", "very", "JUST", "basically"}
	text := draft(500, 3, true, filler)
	require.Equal(t, 6, Count(text).Filler)

	res := ValidateText(text)

	assert.Equal(t, StatusPass, res.Status)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, []string{SuggestFiller}, res.Suggestions)
}

func TestValidate_ScenarioD_ProposalDowngrade(t *testing.T) {
	text := draft(500, 4, true, nil)

	res := Validate(text, FormatProposal)
	assert.Equal(t, StatusSoft, res.Status)
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, []string{SuggestProposals}, res.Suggestions)

	res = Validate(text+"\nBudget: 5k", FormatProposal)
	assert.Equal(t, StatusPass, res.Status)
	assert.Empty(t, res.Suggestions)

	res = Validate(text, "")
	assert.Equal(t, StatusPass, res.Status)
}

func TestValidate_ProposalHookKeepsFixAndSoft(t *testing.T) {
	res := Validate(strings.Repeat("a", 100), FormatProposal)
	assert.Equal(t, StatusFix, res.Status)
	assert.Equal(t, SuggestProposals, res.Suggestions[len(res.Suggestions)-1])

	res = Validate("# Title\n"+strings.Repeat("a", 100), FormatProposal)
	assert.Equal(t, StatusSoft, res.Status)
	assert.Equal(t, 1, res.Score)
}

func TestValidateText_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		res := ValidateText(text)
		assert.Equal(t, Result{Status: StatusFix, Score: 0, Suggestions: []string{SuggestEmpty}}, res)
	}

	res := Validate("  ", FormatProposal)
	assert.Equal(t, StatusFix, res.Status)
	assert.Equal(t, []string{SuggestEmpty, SuggestProposals}, res.Suggestions)
}

func TestValidateText_StatusThresholds(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		score  int
		status Status
	}{
		{"heading only", draft(100, 0, true, nil), 1, StatusSoft},
		{"bullets only", draft(100, 3, false, nil), 2, StatusSoft},
		{"long only", draft(450, 0, false, nil), 2, StatusSoft},
		{"long with heading", draft(450, 0, true, nil), 3, StatusPass},
		{"filler only", draft(100, 0, false, strings.Fields("very very very just just just")), -2, StatusFix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateText(tt.text)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.status, res.Status)
		})
	}
}

func TestValidateText_AddingStructureNeverLowersScore(t *testing.T) {
	base := strings.Repeat("word ", 30)
	prev := ValidateText(base).Score
	for _, extra := range []string{"\n# Heading", "\n- a\n- b\n- c", "\n" + strings.Repeat("more ", 80)} {
		base += extra
		score := ValidateText(base).Score
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestCount_UTF16AndBullets(t *testing.T) {
	c := Count(strings.Repeat("😀", 200))
	assert.Equal(t, 400, c.Length)

	c = Count("• one\n  * two\n- three\nnot - a bullet\n## Sub\n#### too deep")
	assert.Equal(t, 3, c.Bullets)
	assert.Equal(t, 1, c.Headings)

	c = Count("justify the verylarge nicety")
	assert.Equal(t, 0, c.Filler)
}
