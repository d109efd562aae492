package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"tutor-service/metrics"
	"tutor-service/models"
	"tutor-service/validator"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

type ValidateHandler struct {
	now func() time.Time
}

func NewValidateHandler() *ValidateHandler {
	return &ValidateHandler{now: time.Now}
}

// Validate scores a free-text draft.
func (h *ValidateHandler) Validate(c *gin.Context) {
	var req models.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := validator.Validate(req.Text, req.Format)
	metrics.ValidatorResultsTotal.WithLabelValues(string(res.Status)).Inc()
	log.WithFields(log.Fields{
		"format":      req.Format,
		"status":      res.Status,
		"score":       res.Score,
		"suggestions": len(res.Suggestions),
	}).Info("validate.result")

	c.JSON(http.StatusOK, res)
}

// Checks runs the structured checks of a short-video script ("yt") or a
// proposal ("proposal").
func (h *ValidateHandler) Checks(c *gin.Context) {
	var req models.ChecksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := h.now()
	if req.Now != "" {
		t, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "now must be an RFC 3339 timestamp"})
			return
		}
		now = t
	}

	var checks []validator.Check
	switch req.Kind {
	case "yt":
		var doc validator.YTDoc
		if err := json.Unmarshal(req.Doc, &doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid yt document"})
			return
		}
		checks = validator.YTChecks(doc)
	case "proposal":
		var doc validator.ProposalDoc
		if err := json.Unmarshal(req.Doc, &doc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal document"})
			return
		}
		checks = validator.ProposalChecks(doc, now)
	}

	passed := 0
	for _, ch := range checks {
		if ch.Pass {
			passed++
		}
	}
	log.WithFields(log.Fields{
		"kind":   req.Kind,
		"passed": passed,
		"total":  len(checks),
	}).Info("validate.checks")

	c.JSON(http.StatusOK, gin.H{"checks": checks})
}
