package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wardenlock/warden/internal/challenge"
)

// ChallengeHandler is the UI collaborator's side of the credential
// rendezvous: fetch the pending session, submit a password or a deny.
type ChallengeHandler struct {
	broker *challenge.Broker
}

func NewChallengeHandler(broker *challenge.Broker) *ChallengeHandler {
	return &ChallengeHandler{broker: broker}
}

// Pending returns the session awaiting a decision, if any.
func (h *ChallengeHandler) Pending(c *gin.Context) {
	session, ok := h.broker.Pending()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"pending": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": true, "session": session})
}

type RespondRequest struct {
	Password string `json:"password"`
	Deny     bool   `json:"deny"`
}

// Respond forwards one decision into the session and reports the verdict.
// A session that resolved or timed out in the meantime yields 410.
func (h *ChallengeHandler) Respond(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Deny && req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password or deny required"})
		return
	}

	verdict, err := h.broker.Submit(c.Param("id"), req.Password, req.Deny)
	if err != nil {
		if errors.Is(err, challenge.ErrNoSession) {
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, verdict)
}
