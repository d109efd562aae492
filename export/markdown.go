// Package export renders session drafts as downloadable Markdown and Word
// documents.
package export

import (
	"strings"
	"time"
)

const (
	MarkdownContentType = "text/markdown; charset=utf-8"
	DocxContentType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// Defaults for fields the client leaves out.
	DefaultArtifact = "Draft"
	DefaultContext  = "Draft"
	DefaultMarkdown = "# Draft"
	DefaultDocTitle = "Session"

	defaultTitle = "Untitled"
)

// File is a rendered attachment.
type File struct {
	Filename string
	Body     []byte
}

// AsMarkdown renders `# <title>` followed by the body. Line endings are
// normalised to LF.
func AsMarkdown(title, body string) File {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}
	body = strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))

	safe := SanitizeFilename(title)
	if safe == "" {
		safe = defaultTitle
	}

	return File{
		Filename: safe + ".md",
		Body:     []byte("# " + title + "\n\n" + body + "\n"),
	}
}

// ArtifactMarkdown passes markdown through unchanged under the name
// <artifact>_<context>_<YYYY-MM-DD>.md.
func ArtifactMarkdown(artifact, context, markdown string, now time.Time) File {
	name := SanitizeFilename(artifact) + "_" + SanitizeFilename(context) + "_" + now.UTC().Format("2006-01-02") + ".md"
	return File{Filename: name, Body: []byte(markdown)}
}
