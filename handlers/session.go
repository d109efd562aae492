package handlers

import (
	"errors"
	"io"
	"net/http"

	"tutor-service/models"
	"tutor-service/tracks"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type StartSessionResponse struct {
	SessionID string `json:"sessionId"`
	tracks.Template
}

// StartSession picks a track for the learner and returns its template under
// a fresh session id. An empty body starts the default track. Nothing is
// stored server-side.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req models.SessionStartRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warnf("Invalid session start body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	track := tracks.Pick(req.RoleOrProblem, req.Track)
	resp := StartSessionResponse{
		SessionID: uuid.NewString(),
		Template:  tracks.Get(track),
	}

	log.WithFields(log.Fields{
		"session_id": resp.SessionID,
		"track":      track,
	}).Info("session.start")

	c.JSON(http.StatusOK, resp)
}
