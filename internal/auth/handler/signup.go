package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	MobileNumber string `json:"mobileNumber"`
	CountryCode  string `json:"countryCode"`
}

// Signup registers an account. Unlike social login it does not
// establish a session; the user signs in after the backend's
// email/OTP verification gate.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	payload, err := h.svc.Signup(
		c.Request.Context(),
		req.Name,
		req.Email,
		req.Password,
		req.MobileNumber,
		req.CountryCode,
	)
	if err != nil {
		c.JSON(failureStatus(err, http.StatusBadRequest), gin.H{
			"error": failureMessage(err, "Signup failed"),
		})
		return
	}

	c.JSON(http.StatusCreated, payload)
}
