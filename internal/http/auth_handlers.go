package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"menstrualcare-api/internal/service"
)

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Age      int     `json:"age"`
	Weight   float64 `json:"weight"`
	Height   float64 `json:"height"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Weight:   req.Weight,
		Height:   req.Height,
	})
	if err != nil {
		h.writeError(c, err, "Server error during registration")
		return
	}

	h.logger.WithField("user", user.ID).Info("user registered")
	h.respondWithToken(c, user.ID, "Server error during registration")
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err, "Server error during login")
		return
	}

	h.respondWithToken(c, user.ID, "Server error during login")
}

func (h *Handler) respondWithToken(c *gin.Context, userID, fallback string) {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		h.writeError(c, err, fallback)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err, "Server error while fetching user")
		return
	}
	c.JSON(http.StatusOK, user)
}
