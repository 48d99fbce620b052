package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/bootcamp-tracker/utils"
)

const (
	// ContextUserIDKey stores the user id taken from a verified session token.
	ContextUserIDKey = "session_user_id"
	// ContextUsernameKey stores the user name from the session token.
	ContextUsernameKey = "session_username"
)

// Session reads an optional Bearer session token. Requests without one pass through untouched,
// since clients may identify themselves with a plain user id instead. A token that is present
// but malformed or invalid is rejected with 401. With a nil signer sessions are disabled and the
// header is ignored.
func Session(signer *utils.SessionSigner) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if signer == nil || authHeader == "" {
			ctx.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		claims, err := signer.Parse(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid session token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Name)
		ctx.Next()
	}
}

// SessionUserID returns the user id of a verified session token, if any.
func SessionUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
