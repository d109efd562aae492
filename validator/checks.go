package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Check is one pass/fail line of a structured document review.
type Check struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Pass  bool   `json:"pass"`
	Notes string `json:"notes,omitempty"`
}

type Shot struct {
	Framing         string  `json:"framing"`
	DurationSeconds float64 `json:"durationSeconds"`
	Overlay         string  `json:"overlay,omitempty"`
}

// YTDoc is a short-form video script.
type YTDoc struct {
	Title string   `json:"title,omitempty"`
	Hook  string   `json:"hook"`
	Beats []string `json:"beats"`
	Shots []Shot   `json:"shots"`
	CTA   string   `json:"cta"`
}

type ProposalOption struct {
	ID       string `json:"id"`
	Scope    string `json:"scope"`
	Tradeoff string `json:"tradeoff"`
}

type Timeline struct {
	Start     string `json:"start"`
	Milestone string `json:"milestone,omitempty"`
	End       string `json:"end"`
}

// ProposalDoc is a one-page consulting proposal.
type ProposalDoc struct {
	Client     string           `json:"client,omitempty"`
	KPI        string           `json:"kpi"`
	Options    []ProposalOption `json:"options"`
	Scope      []string         `json:"scope"`
	Timeline   Timeline         `json:"timeline"`
	Investment string           `json:"investment"`
	NextStep   string           `json:"nextStep"`
}

const (
	maxBeatWords   = 12
	maxTotalSecs   = 60
	maxShotSeconds = 12
)

var (
	patternTagRe  = regexp.MustCompile(`\[Pattern:\s*[^\]]+\]`)
	imperativeRe  = regexp.MustCompile(`(?i)^(add|book|claim|click|download|join|learn|see|start|try|watch|visit|get|schedule|apply)\b`)
	payoffRe      = regexp.MustCompile(`(?i)(so you can|you'll get|payoff:)`)
	optionIDRe    = regexp.MustCompile(`^[ABC]$`)
	wordCharRe    = regexp.MustCompile(`\w`)
	leadingWordRe = regexp.MustCompile(`^[A-Za-z]+`)
	currencyRe    = regexp.MustCompile(`(\$|USD|£|€)`)
	magnitudeRe   = regexp.MustCompile(`\b\d{2,6}\b`)
	shorthandRe   = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*[kKmM]\b`)
	weekRe        = regexp.MustCompile(`(?i)week\s*(\d+)`)
)

func YTChecks(d YTDoc) []Check {
	beatsOK := len(d.Beats) >= 5 && len(d.Beats) <= 7
	for _, b := range d.Beats {
		if len(strings.Fields(b)) > maxBeatWords {
			beatsOK = false
		}
	}

	ctaWords := len(strings.Fields(d.CTA))

	var total float64
	longShot := false
	for _, s := range d.Shots {
		total += s.DurationSeconds
		if s.DurationSeconds > maxShotSeconds {
			longShot = true
		}
	}

	payoff := false
	for _, b := range d.Beats {
		if payoffRe.MatchString(b) {
			payoff = true
			break
		}
	}

	cta := Check{ID: "cta_words", Label: "CTA is 2–8 words (verb + object)", Pass: ctaWords >= 2 && ctaWords <= 8}
	if imperativeRe.MatchString(strings.TrimSpace(d.CTA)) {
		cta.Notes = "looks imperative"
	}

	return []Check{
		{ID: "hook_pattern_tag", Label: "Hook has pattern tag", Pass: patternTagRe.MatchString(d.Hook)},
		{ID: "beats_count", Label: "5–7 beats, ≤12 words each", Pass: beatsOK},
		cta,
		{ID: "duration_total", Label: "Total duration ≤ 60s", Pass: total <= maxTotalSecs, Notes: strconv.FormatFloat(total, 'f', -1, 64) + "s"},
		{ID: "payoff_present", Label: "One beat names the payoff", Pass: payoff},
		{ID: "shot_too_long_soft", Label: "No single shot > 12s (soft)", Pass: !longShot},
	}
}

func ProposalChecks(d ProposalDoc, now time.Time) []Check {
	kpiOK := d.KPI != "" && !strings.ContainsAny(d.KPI, "\r\n")

	optionsOK := len(d.Options) >= 2 && len(d.Options) <= 3
	for _, o := range d.Options {
		if !optionIDRe.MatchString(o.ID) || !wordCharRe.MatchString(o.Tradeoff) {
			optionsOK = false
		}
	}

	scopeOK := len(d.Scope) >= 3 && len(d.Scope) <= 5
	for _, s := range d.Scope {
		if !leadingWordRe.MatchString(s) {
			scopeOK = false
		}
	}

	var dates []time.Time
	for _, raw := range []string{d.Timeline.Start, d.Timeline.Milestone, d.Timeline.End} {
		if dt, ok := CoerceDate(raw, now); ok {
			dates = append(dates, dt)
		}
	}
	timelineOK := len(dates) >= 2
	for _, dt := range dates {
		if dt.Before(now) {
			timelineOK = false
		}
	}

	priceOK := currencyRe.MatchString(d.Investment) &&
		(magnitudeRe.MatchString(d.Investment) || shorthandRe.MatchString(d.Investment))

	return []Check{
		{ID: "kpi_present", Label: "Exactly one KPI line", Pass: kpiOK},
		{ID: "options_mece", Label: "2–3 options A/B/C with trade‑offs", Pass: optionsOK},
		{ID: "scope_verbs", Label: "3–5 deliverables start with verbs", Pass: scopeOK},
		{ID: "timeline_present", Label: "Start/finish + milestone in future", Pass: timelineOK},
		{ID: "price_valid", Label: "Price has currency + magnitude", Pass: priceOK},
	}
}

// ResolveWeek turns a "Week N" label into midnight UTC of the N-th Monday
// on or after anchor. Week 1 is anchor's own Monday when anchor is a Monday.
func ResolveWeek(label string, anchor time.Time) (time.Time, bool) {
	m := weekRe.FindStringSubmatch(label)
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		n = 1
	}

	anchor = anchor.UTC()
	day := int(anchor.Weekday())
	if day == 0 {
		day = 7
	}
	toMonday := (8 - day) % 7

	d := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, toMonday+(n-1)*7), true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// CoerceDate accepts a "Week N" label or a calendar date. Dates without a
// zone are read as UTC.
func CoerceDate(s string, anchor time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if wk, ok := ResolveWeek(s, anchor); ok {
		return wk, true
	}
	for _, layout := range dateLayouts {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt, true
		}
	}
	return time.Time{}, false
}
