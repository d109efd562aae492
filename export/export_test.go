package export

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"A/b? c.md", "A_b_c_md"},
		{"  plain-name_ok ", "plain-name_ok"},
		{"???", ""},
		{"Café draft", "Caf_draft"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestSanitizeFilenameFriendly(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Quick‑win’s   current—draft!!", "quick-wins-current-draft"},
		{"Quick‑win’s current draft", "quick-wins-current-draft"},
		{"Crème Brûlée_notes", "creme-brulee-notes"},
		{"“Quoted” `title`", "quoted-title"},
		{"!!!", "untitled"},
		{"", "untitled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilenameFriendly(tt.in), tt.in)
	}
}

func TestAsMarkdown(t *testing.T) {
	f := AsMarkdown("A/b? c.md", "line one\r\nline two\n\n")
	assert.Equal(t, "A_b_c_md.md", f.Filename)
	assert.Equal(t, "# A/b? c.md\n\nline one\nline two\n", string(f.Body))

	f = AsMarkdown("   ", "")
	assert.Equal(t, "Untitled.md", f.Filename)
	assert.Equal(t, "# Untitled\n\n\n", string(f.Body))

	f = AsMarkdown("???", "x")
	assert.Equal(t, "Untitled.md", f.Filename)
	assert.Equal(t, "# ???\n\nx\n", string(f.Body))
}

func TestArtifactMarkdown(t *testing.T) {
	now := time.Date(2025, time.September, 24, 23, 30, 0, 0, time.FixedZone("X", -3*3600))

	f := ArtifactMarkdown("Short script", "Creator/Track", "# Hello", now)

	assert.Equal(t, "Short_script_Creator_Track_2025-09-25.md", f.Filename)
	assert.Equal(t, "# Hello", string(f.Body))
}

func TestDocxFilename(t *testing.T) {
	assert.Equal(t, "Week_1_plan.docx", DocxFilename("Week 1 plan"))
	assert.Equal(t, "_lead.docx", DocxFilename("?lead"))
	assert.Equal(t, "session.docx", DocxFilename(""))
}

func TestDocx(t *testing.T) {
	data, err := Docx("Plan & <Notes>", "first\r\n\nthird")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = string(b)
	}

	require.Contains(t, files, "[Content_Types].xml")
	require.Contains(t, files, "_rels/.rels")
	require.Contains(t, files, "word/styles.xml")
	doc, ok := files["word/document.xml"]
	require.True(t, ok)

	assert.Contains(t, doc, `<w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t xml:space="preserve">Plan &amp; &lt;Notes&gt;</w:t>`)
	assert.Contains(t, doc, `<w:p></w:p>`)
	assert.Contains(t, doc, `>first</w:t>`)
	assert.Contains(t, doc, `> </w:t>`)
	assert.Contains(t, doc, `>third</w:t>`)
	assert.Equal(t, 5, bytes.Count([]byte(doc), []byte("<w:p>")))
}
