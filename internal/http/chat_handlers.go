package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createChatRequest struct {
	Participants []string `json:"participants" binding:"required"`
	IsGroupChat  bool     `json:"isGroupChat"`
	GroupName    string   `json:"groupName"`
}

type postMessageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) listChats(c *gin.Context) {
	chats, err := h.chats.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (h *Handler) createChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	chat, err := h.chats.CreateConversation(c.Request.Context(), currentUserID(c), req.Participants, req.IsGroupChat, req.GroupName)
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *Handler) postMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	msg, err := h.chats.PostMessage(c.Request.Context(), currentUserID(c), c.Param("id"), req.Content)
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *Handler) listMessages(c *gin.Context) {
	msgs, err := h.chats.ListMessages(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) exportTranscript(c *gin.Context) {
	out, err := h.transcripts.Export(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Failed to export transcript")
		return
	}
	c.JSON(http.StatusOK, out)
}
