package handlers

import (
	"net/http"
	"strings"
	"time"

	"polarflow/utils"

	"github.com/gin-gonic/gin"
)

// RevokeTokenHandler signs the caller out by revoking the presented token
// for the remainder of its lifetime.
func RevokeTokenHandler(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		utils.JSONError(c, http.StatusBadRequest, "missing bearer token", "")
		return
	}

	if err := utils.RevokeAuthToken(c.Request.Context(), utils.HashToken(tokenString), 24*time.Hour); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to revoke token", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": true})
}
