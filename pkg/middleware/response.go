package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every tracking endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: data})
}
