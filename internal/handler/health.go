package handler

import (
	"github.com/gin-gonic/gin"

	"wallet-confirm/internal/handler/response"
)

// HealthCheck 健康检查
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "UP",
		"version": "1.0.0",
		"service": "confirm-server",
	})
}
