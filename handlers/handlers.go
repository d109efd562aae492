package handlers

import (
	"net/http"
	"time"

	"tutor-service/version"

	"github.com/gin-gonic/gin"
)

const ServiceName = "tutor-service"

var flagMoves = []string{"Understand", "Draft", "Polish"}

// HealthCheck returns service health status
func HealthCheck(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Flags returns the client feature flags.
func Flags(c *gin.Context) {
	var rev interface{}
	if r := version.Revision(); r != "" {
		rev = r
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"beta":    true,
		"moves":   flagMoves,
		"version": rev,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get(ServiceName))
}

// MethodNotAllowed answers routes that exist for other methods.
func MethodNotAllowed(c *gin.Context) {
	c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
}
