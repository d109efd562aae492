package tutor

import (
	"fmt"
	"strings"
)

const (
	defaultCourseTitle = "this course"
	defaultScope       = "the topics of this course"
)

// Request is one learner question, scoped to a course.
type Request struct {
	CourseTitle string
	Scope       string
	Message     string
}

// SystemPrompt builds the instruction that keeps the assistant inside scope.
func SystemPrompt(courseTitle, scope string) string {
	courseTitle = strings.TrimSpace(courseTitle)
	if courseTitle == "" {
		courseTitle = defaultCourseTitle
	}
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = defaultScope
	}

	return fmt.Sprintf(
		"You are a concise tutor for %q. Stay strictly within this scope: %s. "+
			"If the learner asks about anything outside this scope, say what is out of scope "+
			"and suggest next steps that are within it. Prefer short paragraphs and bullets.",
		courseTitle, scope,
	)
}
