package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chakravarthigit/prompt-frontend/internal/auth"
)

func (h *Handler) UpdateProfile(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), fields)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": failureMessage(err, "Profile update failed"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	msg, err := h.svc.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": failureMessage(err, "Password change failed"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	exists, err := h.svc.VerifyEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": failureMessage(err, "Email verification failed"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	verified, err := h.svc.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": failureMessage(err, "OTP verification failed"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": verified})
}
