package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/internal/apperrors"
	"github.com/organivo/organivo/internal/types"
)

// ErrorHandler is the single translator from business errors to the JSON
// envelope. Handlers attach errors with ctx.Error and abort; anything that
// is not an AppError is reported as a generic 500 so internals never leak.
func ErrorHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if len(ctx.Errors) == 0 || ctx.Writer.Written() {
			return
		}

		err := ctx.Errors.Last().Err

		var appErr *apperrors.AppError

		if errors.As(err, &appErr) {
			ctx.JSON(appErr.Status, types.APIResponse{
				Success: false,
				Message: appErr.Message,
			})
			return
		}

		log.Printf("Unexpected error on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)

		ctx.JSON(http.StatusInternalServerError, types.APIResponse{
			Success: false,
			Message: "Internal server error",
		})
	}
}
