package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"menstrualcare-api/internal/domain"
)

type updateProfileRequest struct {
	Name   string  `json:"name"`
	Age    int     `json:"age" binding:"omitempty,min=0"`
	Weight float64 `json:"weight" binding:"omitempty,min=0"`
	Height float64 `json:"height" binding:"omitempty,min=0"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err, "Something went wrong")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), domain.ProfileUpdate{
		Name:   req.Name,
		Age:    req.Age,
		Weight: req.Weight,
		Height: req.Height,
	})
	if err != nil {
		h.writeError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(c, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
