package handlers

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strconv"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/internal/types"
)

func respond(ctx *gin.Context, status int, message string, data any) {
	ctx.JSON(status, types.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// fail records a business error for the centralized translator and stops
// the handler chain. Nothing is written here.
func fail(ctx *gin.Context, err error) {
	ctx.Abort()
	_ = ctx.Error(err)
}

func setAuthCookie(ctx *gin.Context, domain, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.AuthCookieName,
		Value:    token,
		Path:     "/",
		Domain:   domain,
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// validName mirrors the account field constraints: letters only, 2-50 runes.
func validName(name string) bool {
	runes := []rune(name)

	if len(runes) < 2 || len(runes) > 50 {
		return false
	}

	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

func validDescription(description string) bool {
	return len(description) >= 10 && len(description) <= 500
}

// generateCode returns a 6-digit numeric verification code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))

	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
