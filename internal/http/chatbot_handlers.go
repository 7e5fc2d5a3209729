package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type askRequest struct {
	Message string `json:"message"`
}

func (h *Handler) askChatbot(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	answer, history, err := h.chatbot.Ask(c.Request.Context(), currentUserID(c), req.Message)
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"response": answer,
		"messages": history,
	})
}

func (h *Handler) chatbotHistory(c *gin.Context) {
	history, err := h.chatbot.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}
