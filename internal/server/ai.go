package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sealmit/asig/pkg/types"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []chatMessage `json:"history"`
}

// aiChat is a placeholder for the conversational assistant. It echoes the
// message; no model is wired up yet.
func (s *Server) aiChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", types.ErrMalformedEntity, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"response": fmt.Sprintf("I received your message: %q. I am a placeholder for the AI assistant.", req.Message),
	})
}
