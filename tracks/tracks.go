// Package tracks holds the session templates a learner can start from.
package tracks

import (
	"regexp"
	"strings"

	"tutor-service/validator"
)

const (
	Creator    = "creator"
	Consultant = "consultant"
)

type HeroMove struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TapPrompt string `json:"tapPrompt"`
}

type ValidatorPreview struct {
	Checks []validator.Check `json:"checks"`
}

// Template describes a track: what the learner ships, the tutor's scope and
// the prompts offered as one-tap moves.
type Template struct {
	Title     string           `json:"title"`
	Outcome   string           `json:"outcome"`
	Scope     string           `json:"scope"`
	HeroMoves []HeroMove       `json:"heroMoves"`
	Validator ValidatorPreview `json:"validator"`
}

var consultantHintRe = regexp.MustCompile(`(proposal|client|retainer|sow)`)

var creator = Template{
	Title:   "YouTube Short — Script + Shot List",
	Outcome: "Ship a 45–60s script + shot list in 40–60 min",
	Scope:   "hooks, beats, b‑roll, captions; no editing tips",
	HeroMoves: []HeroMove{
		{ID: "hm1", Name: "Hooks + Spine", TapPrompt: "Give 12 hooks for [topic] to [audience]. Format: HOOK → 3‑beat outline → CTA. Avoid [taboos]."},
		{ID: "hm2", Name: "Voice + B‑roll", TapPrompt: "Rewrite Hook #[n] in [voice]. Add B‑roll ideas + on‑screen text + per‑beat seconds."},
		{ID: "hm3", Name: "Shot List", TapPrompt: "Turn final script into a shot list (Scene|Shot|Action|Line|OSD|secs) + 3 alt hooks + description + tags."},
	},
	Validator: ValidatorPreview{Checks: []validator.Check{
		{ID: "hook_pattern_tag", Label: "Hook has pattern tag"},
		{ID: "beats_count", Label: "5–7 beats, ≤12 words each"},
	}},
}

var consultant = Template{
	Title:   "Discovery → 1‑page Proposal (+ 3‑slide summary)",
	Outcome: "Draft a concise proposal + 3‑slide exec summary in 60–90 min",
	Scope:   "compress notes → outcomes, scope, options; pricing options; follow‑ups",
	HeroMoves: []HeroMove{
		{ID: "hm1", Name: "Clarify & Compress", TapPrompt: "From these notes, extract: pain, current state, desired outcomes, constraints, success metrics. Output 3 lines: Problem, Why now, What “good” looks like."},
		{ID: "hm2", Name: "Draft Proposal", TapPrompt: "Draft a 1‑page proposal. Sections: Outcomes, Scope (bullets), Timeline, Assumptions, Client inputs, Risks. Tone: [voice]."},
		{ID: "hm3", Name: "Price & Package", TapPrompt: "Create 3 options (Good/Better/Best) with deliverables, time, price, acceptance criteria. Add a 3‑slide exec summary."},
	},
	Validator: ValidatorPreview{Checks: []validator.Check{
		{ID: "kpi_present", Label: "Exactly one KPI line"},
		{ID: "options_mece", Label: "2–3 options A/B/C with trade‑offs"},
	}},
}

// Pick returns the track name for a start request. An explicit track wins;
// otherwise consulting vocabulary in roleOrProblem selects the consultant
// track.
func Pick(roleOrProblem, track string) string {
	if track != "" {
		return track
	}
	if consultantHintRe.MatchString(strings.ToLower(roleOrProblem)) {
		return Consultant
	}
	return Creator
}

// Get returns a copy of the named template. Unknown names get the creator
// track.
func Get(name string) Template {
	tpl := creator
	if name == Consultant {
		tpl = consultant
	}
	tpl.HeroMoves = append([]HeroMove(nil), tpl.HeroMoves...)
	tpl.Validator.Checks = append([]validator.Check(nil), tpl.Validator.Checks...)
	return tpl
}
