package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	EmailOrMobile string `json:"emailOrMobile" binding:"required"`
	Password      string `json:"password" binding:"required"`
	CountryCode   string `json:"countryCode"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, err := h.svc.Login(
		c.Request.Context(),
		req.EmailOrMobile,
		req.Password,
		req.CountryCode,
	)
	if err != nil {
		c.JSON(failureStatus(err, http.StatusUnauthorized), gin.H{
			"error": failureMessage(err, "Login failed"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "logged_in",
		"user":     sess.User,
		"redirect": safeReturnPath(c.Query("from")),
	})
}
