package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// ContextRequestIDKey stores the request id in the Gin context.
	ContextRequestIDKey = "request_id"
)

// RequestID reuses a well formed incoming X-Request-ID or generates a new one.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		ctx.Set(ContextRequestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(ContextRequestIDKey)
}
