package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"menstrualcare-api/internal/auth"
	"menstrualcare-api/internal/realtime"
	"menstrualcare-api/internal/service"
)

// Deps groups everything the HTTP layer talks to.
type Deps struct {
	Users       service.UserService
	Chats       service.ChatService
	Chatbot     service.ChatbotService
	Transcripts service.TranscriptService
	Tokens      *auth.TokenManager
	Gateway     *realtime.Gateway
	Logger      *logrus.Logger
	CORSOrigin  string
	// Development exposes internal error details in 500 responses.
	Development bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	chats       service.ChatService
	chatbot     service.ChatbotService
	transcripts service.TranscriptService
	tokens      *auth.TokenManager
	gateway     *realtime.Gateway
	logger      *logrus.Logger
	corsOrigin  string
	development bool
}

func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		users:       deps.Users,
		chats:       deps.Chats,
		chatbot:     deps.Chatbot,
		transcripts: deps.Transcripts,
		tokens:      deps.Tokens,
		gateway:     deps.Gateway,
		logger:      logger,
		corsOrigin:  deps.CORSOrigin,
		development: deps.Development,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware(h.corsOrigin))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.gateway != nil {
		router.GET("/ws", h.gateway.ServeWS)
	}

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth", h.requireAuth, h.currentUser)
	}

	chat := api.Group("/chat", h.requireAuth)
	{
		chat.GET("", h.listChats)
		chat.GET("/all", h.listChats)
		chat.POST("", h.createChat)
		chat.POST("/:id/messages", h.postMessage)
		chat.GET("/:id/messages", h.listMessages)
		chat.POST("/:id/transcript", h.exportTranscript)
	}

	profile := api.Group("/profile", h.requireAuth)
	{
		profile.GET("", h.getProfile)
		profile.PUT("", h.updateProfile)
		profile.PUT("/password", h.changePassword)
	}

	bot := api.Group("/chatbot", h.requireAuth)
	{
		bot.GET("", h.chatbotHistory)
		bot.POST("", h.askChatbot)
	}
}
