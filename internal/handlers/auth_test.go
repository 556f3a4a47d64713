package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/db"
	"github.com/organivo/organivo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchUser(t *testing.T, email string) models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.DB.Where("email = ?", email).First(&user).Error)

	return user
}

func TestRegisterStoresHashedCredential(t *testing.T) {
	r := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"firstName": "ada",
		"lastName":  "lovelace",
		"email":     "Ada@Example.COM",
		"password":  "password123",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var data struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	}
	decodeData(t, env, &data)
	assert.Equal(t, "ada@example.com", data.Email)

	user := fetchUser(t, "ada@example.com")
	assert.NotEqual(t, "password123", user.HashedPassword)
	assert.False(t, user.Verified)
	require.NotNil(t, user.VerificationCode)
	assert.Len(t, *user.VerificationCode, 6)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	cases := []gin.H{
		{"firstName": "ada", "lastName": "lovelace", "password": "password123"},                                 // missing email
		{"firstName": "ada", "lastName": "lovelace", "email": "not-an-email", "password": "password123"},       // bad email
		{"firstName": "ada", "lastName": "lovelace", "email": "ada@example.com", "password": "short"},          // short password
		{"firstName": "r2d2", "lastName": "lovelace", "email": "ada@example.com", "password": "password123"},   // non-alphabetic name
		{"firstName": "a", "lastName": "lovelace", "email": "ada@example.com", "password": "password123"},      // too short name
		{"firstName": "ada", "lastName": "love lace", "email": "ada@example.com", "password": "password123"},   // space in name
	}

	for _, body := range cases {
		w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	r := newTestRouter(t)

	registerUser(t, r, "ada@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"firstName": "ada",
		"lastName":  "lovelace",
		"email":     "ada@example.com",
		"password":  "password123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
}

func TestLoginErrors(t *testing.T) {
	r := newTestRouter(t)

	registerUser(t, r, "ada@example.com")

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginNeverLeaksHash(t *testing.T) {
	r := newTestRouter(t)

	registerUser(t, r, "ada@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "password123",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hashed")
	assert.NotContains(t, w.Body.String(), "password123")

	var data struct {
		User struct {
			Email    string `json:"email"`
			Verified bool   `json:"verified"`
		} `json:"user"`
	}
	decodeData(t, env, &data)
	assert.Equal(t, "ada@example.com", data.User.Email)
	assert.False(t, data.User.Verified)
}

func TestVerifyEmailIsSingleUse(t *testing.T) {
	r := newTestRouter(t)

	registerUser(t, r, "ada@example.com")
	user := fetchUser(t, "ada@example.com")
	code := *user.VerificationCode

	// Wrong code rejected.
	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/verify-email", "", gin.H{
		"email": "ada@example.com",
		"code":  "000000",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct code flips the flag and clears the code.
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/verify-email", "", gin.H{
		"email": "ada@example.com",
		"code":  code,
	})
	require.Equal(t, http.StatusOK, w.Code)

	user = fetchUser(t, "ada@example.com")
	assert.True(t, user.Verified)
	assert.Nil(t, user.VerificationCode)

	// Verified is terminal: even the previously correct code is rejected.
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/verify-email", "", gin.H{
		"email": "ada@example.com",
		"code":  code,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/resend-verification", "", gin.H{
		"email": "ada@example.com",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResendVerificationKeepsExistingCode(t *testing.T) {
	r := newTestRouter(t)

	registerUser(t, r, "ada@example.com")
	before := *fetchUser(t, "ada@example.com").VerificationCode

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/resend-verification", "", gin.H{
		"email": "ada@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	after := *fetchUser(t, "ada@example.com").VerificationCode
	assert.Equal(t, before, after)
}

func TestSessionAndProfile(t *testing.T) {
	r := newTestRouter(t)

	token, userID := registerUser(t, r, "ada@example.com")

	w, env := doJSON(t, r, http.MethodGet, "/api/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var session struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decodeData(t, env, &session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, userID, session.User.ID)

	w, env = doJSON(t, r, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		User struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"user"`
	}
	decodeData(t, env, &profile)
	assert.Equal(t, "ada", profile.User.FirstName)
	assert.Equal(t, "lovelace", profile.User.LastName)
}

func TestUpdateProfile(t *testing.T) {
	r := newTestRouter(t)

	token, _ := registerUser(t, r, "ada@example.com")

	w, _ := doJSON(t, r, http.MethodPatch, "/api/auth/profile", token, gin.H{
		"firstName": "grace",
	})
	require.Equal(t, http.StatusOK, w.Code)

	user := fetchUser(t, "ada@example.com")
	assert.Equal(t, "grace", user.FirstName)
	assert.Equal(t, "lovelace", user.LastName)

	w, _ = doJSON(t, r, http.MethodPatch, "/api/auth/profile", token, gin.H{
		"firstName": "gr4ce",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePassword(t *testing.T) {
	r := newTestRouter(t)

	token, _ := registerUser(t, r, "ada@example.com")

	w, _ := doJSON(t, r, http.MethodPatch, "/api/auth/password", token, gin.H{
		"currentPassword": "wrongpassword",
		"newPassword":     "newpassword123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPatch, "/api/auth/password", token, gin.H{
		"currentPassword": "password123",
		"newPassword":     "newpassword123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "newpassword123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEmailChangeFlow(t *testing.T) {
	r := newTestRouter(t)

	token, userID := registerUser(t, r, "ada@example.com")

	w, env := doJSON(t, r, http.MethodPatch, "/api/auth/email", token, gin.H{
		"email": "ada.new@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var opened struct {
		SessionID string `json:"sessionId"`
		Email     string `json:"email"`
	}
	decodeData(t, env, &opened)
	assert.Equal(t, "ada.new@example.com", opened.Email)

	// The live address is untouched until confirmation.
	assert.Equal(t, "ada@example.com", fetchUser(t, "ada@example.com").Email)

	var tempEmail models.TempEmail
	require.NoError(t, db.DB.Where("session_id = ?", opened.SessionID).First(&tempEmail).Error)
	assert.Equal(t, userID, tempEmail.UserID)

	// Wrong code rejected, state unchanged.
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/email/verify", token, gin.H{
		"sessionId": opened.SessionID,
		"code":      "000000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Resend returns the same session.
	w, env = doJSON(t, r, http.MethodPost, "/api/auth/email/resend", token, gin.H{
		"sessionId": opened.SessionID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resent struct {
		SessionID string `json:"sessionId"`
	}
	decodeData(t, env, &resent)
	assert.Equal(t, opened.SessionID, resent.SessionID)

	// Correct code moves the address and consumes the side record.
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/email/verify", token, gin.H{
		"sessionId": opened.SessionID,
		"code":      tempEmail.Code,
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "ada.new@example.com", fetchUser(t, "ada.new@example.com").Email)

	err := db.DB.Where("session_id = ?", opened.SessionID).First(&models.TempEmail{}).Error
	assert.Error(t, err)

	// The consumed session cannot be replayed.
	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/email/verify", token, gin.H{
		"sessionId": opened.SessionID,
		"code":      tempEmail.Code,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmailChangeRejectsTakenAddress(t *testing.T) {
	r := newTestRouter(t)

	registerUser(t, r, "grace@example.com")
	token, _ := registerUser(t, r, "ada@example.com")

	w, _ := doJSON(t, r, http.MethodPatch, "/api/auth/email", token, gin.H{
		"email": "grace@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
