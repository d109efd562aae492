package handlers

import (
	"net/http"
	"time"

	"tutor-service/export"
	"tutor-service/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	now func() time.Time
}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{now: time.Now}
}

// Markdown returns the draft as a Markdown attachment. A body with a title or
// body field is rendered under a heading; otherwise the markdown field is
// passed through and named after artifact, context and today's date.
func (h *ExportHandler) Markdown(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Bad JSON"})
		return
	}

	var f export.File
	if req.Title != nil || req.Body != nil {
		f = export.AsMarkdown(valueOr(req.Title, ""), valueOr(req.Body, ""))
	} else {
		f = export.ArtifactMarkdown(
			valueOr(req.Artifact, export.DefaultArtifact),
			valueOr(req.Context, export.DefaultContext),
			valueOr(req.Markdown, export.DefaultMarkdown),
			h.now(),
		)
	}

	log.WithFields(log.Fields{"filename": f.Filename, "bytes": len(f.Body)}).Info("export.markdown")

	c.Header("Content-Disposition", `attachment; filename="`+f.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, export.MarkdownContentType, f.Body)
}

// Docx returns the session as a Word document.
func (h *ExportHandler) Docx(c *gin.Context) {
	var req models.DocxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := valueOr(req.Title, export.DefaultDocTitle)
	body, err := export.Docx(title, valueOr(req.Content, ""))
	if err != nil {
		log.WithError(err).Error("export.docx")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render document"})
		return
	}

	filename := export.DocxFilename(title)
	log.WithFields(log.Fields{"filename": filename, "bytes": len(body)}).Info("export.docx")

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.DocxContentType, body)
}

func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
