package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wardenlock/warden/internal/monitor"
	"github.com/wardenlock/warden/internal/version"
)

type StatusHandler struct {
	scheduler *monitor.Scheduler
	startedAt time.Time
}

func NewStatusHandler(scheduler *monitor.Scheduler) *StatusHandler {
	return &StatusHandler{scheduler: scheduler, startedAt: time.Now()}
}

func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":       version.Name,
		"version":    version.Full(),
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"monitoring": h.scheduler.Status(),
	})
}

// StartMonitoring resumes the enforcement loop.
func (h *StatusHandler) StartMonitoring(c *gin.Context) {
	h.scheduler.Start()
	c.JSON(http.StatusOK, h.scheduler.Status())
}

// StopMonitoring pauses the enforcement loop. Any in-flight challenge
// session resolves or times out before the worker exits.
func (h *StatusHandler) StopMonitoring(c *gin.Context) {
	h.scheduler.Stop()
	c.JSON(http.StatusOK, h.scheduler.Status())
}
