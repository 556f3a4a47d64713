package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/internal/auth"
	"github.com/organivo/organivo/internal/types"
)

// Auth extracts the session token from the authToken cookie or the
// Authorization header, verifies signature and expiry, and stores the user
// id on the context. On failure the cookie is cleared and the request is
// rejected with 401. No database lookup happens here; the token is the
// only credential.
//
// The domain must match the one the cookie was set with, or browsers will
// keep the stale cookie around.
func Auth(tokens *auth.TokenManager, domain string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)

		if token == "" {
			rejectUnauthorized(ctx, domain)
			return
		}

		userID, err := tokens.Verify(token)

		if err != nil {
			rejectUnauthorized(ctx, domain)
			return
		}

		ctx.Set(types.ContextUserIDKey, userID)
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(types.AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := ctx.GetHeader("Authorization")

	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

func rejectUnauthorized(ctx *gin.Context, domain string) {
	ctx.SetCookie(types.AuthCookieName, "", -1, "/", domain, true, true)
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, types.APIResponse{
		Success: false,
		Message: "Unauthorized",
	})
}
