package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Message: message, Success: true, Data: data})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Message: message, Success: false, Data: nil})
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Message: message, Success: false, Data: nil})
}

func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, "Internal Server Error")
}
