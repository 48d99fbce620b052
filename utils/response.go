package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request. Detail keeps the field name existing
// clients read; Code is the five digit application code (status * 100 + n).
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   int    `json:"code"`
	// Set only for daily limit violations.
	Date string `json:"date,omitempty"`
	Type string `json:"type,omitempty"`
}

// Success writes data as the JSON body with status 200. Resources are returned bare.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, data)
}

// Error writes a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	ctx.JSON(status, ErrorResponse{Detail: message, Code: code})
}

// ErrorWith writes a prepared error body.
func ErrorWith(ctx *gin.Context, status int, body ErrorResponse) {
	ctx.JSON(status, body)
}
