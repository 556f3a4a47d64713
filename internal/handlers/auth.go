package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/organivo/organivo/db"
	"github.com/organivo/organivo/internal/apperrors"
	"github.com/organivo/organivo/internal/auth"
	"github.com/organivo/organivo/internal/mailer"
	"github.com/organivo/organivo/internal/models"
	"github.com/organivo/organivo/internal/utils"
	"gorm.io/gorm"
)

// Auth owns the account endpoints. The hasher, token manager and mailer are
// injected at construction; there is no package-level credential state.
type Auth struct {
	Hasher *auth.PasswordHasher
	Tokens *auth.TokenManager
	Mail   mailer.Mailer
	Domain string
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

type UpdateEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type EmailSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type VerifyNewEmailRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

func (h *Auth) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("All fields are required"))
		return
	}

	if !validName(body.FirstName) {
		fail(ctx, apperrors.Validation("Please provide a valid first name"))
		return
	}

	if !validName(body.LastName) {
		fail(ctx, apperrors.Validation("Please provide a valid last name"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var existing models.User

	err := db.DB.Where("email = ?", email).First(&existing).Error

	if err == nil {
		fail(ctx, apperrors.Conflict("Email already exists"))
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(ctx, err)
		return
	}

	code, err := generateCode()

	if err != nil {
		fail(ctx, err)
		return
	}

	user := models.User{
		FirstName:        strings.ToLower(strings.TrimSpace(body.FirstName)),
		LastName:         strings.ToLower(strings.TrimSpace(body.LastName)),
		Email:            email,
		HashedPassword:   h.Hasher.Hash(body.Password),
		VerificationCode: &code,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		fail(ctx, err)
		return
	}

	// Registration still succeeds if delivery fails; the resend endpoint
	// covers that case.
	if err := h.Mail.SendVerificationCode(user.Email, user.FullName(), code); err != nil {
		log.Printf("Failed to send verification email to %s: %v", user.Email, err)
	}

	respond(ctx, http.StatusCreated, "Please check your email for the verification code", gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

func (h *Auth) Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid email or password"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	err := db.DB.Where("email = ?", email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, apperrors.NotFound("User not found"))
			return
		}
		fail(ctx, err)
		return
	}

	if !h.Hasher.Compare(body.Password, user.HashedPassword) {
		fail(ctx, apperrors.Auth("Invalid password"))
		return
	}

	token, err := h.Tokens.Sign(user.ID)

	if err != nil {
		fail(ctx, err)
		return
	}

	setAuthCookie(ctx, h.Domain, token, int(h.Tokens.ExpiresIn().Seconds()))

	respond(ctx, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user.Profile(),
	})
}

func (h *Auth) Logout(ctx *gin.Context) {
	setAuthCookie(ctx, h.Domain, "", -1)
	respond(ctx, http.StatusOK, "Logged out successfully", nil)
}

func (h *Auth) VerifyEmail(ctx *gin.Context) {
	var body VerifyEmailRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid email"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, apperrors.NotFound("User not found"))
			return
		}
		fail(ctx, err)
		return
	}

	// Verification is terminal: once verified, every code is rejected.
	if user.Verified {
		fail(ctx, apperrors.Auth("User is already verified"))
		return
	}

	if user.VerificationCode == nil || *user.VerificationCode != body.Code {
		fail(ctx, apperrors.Auth("Invalid verification code"))
		return
	}

	updates := map[string]interface{}{
		"verified":          true,
		"verification_code": nil,
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		fail(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Email verified successfully", nil)
}

func (h *Auth) ResendVerification(ctx *gin.Context) {
	var body ResendVerificationRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid email"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var user models.User

	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, apperrors.NotFound("User not found"))
			return
		}
		fail(ctx, err)
		return
	}

	if user.Verified {
		fail(ctx, apperrors.Auth("User is already verified"))
		return
	}

	// Idempotent: an existing code is resent, not replaced.
	if user.VerificationCode == nil {
		code, err := generateCode()

		if err != nil {
			fail(ctx, err)
			return
		}

		if err := db.DB.Model(&user).Update("verification_code", code).Error; err != nil {
			fail(ctx, err)
			return
		}

		user.VerificationCode = &code
	}

	if err := h.Mail.SendVerificationCode(user.Email, user.FullName(), *user.VerificationCode); err != nil {
		fail(ctx, apperrors.Internal("Failed to send verification email"))
		return
	}

	respond(ctx, http.StatusOK, "Verification email resent", gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

func (h *Auth) currentUser(ctx *gin.Context) (*models.User, error) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		return nil, apperrors.Auth("Unauthorized")
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}

	return &user, nil
}

func (h *Auth) GetSession(ctx *gin.Context) {
	user, err := h.currentUser(ctx)

	if err != nil {
		fail(ctx, err)
		return
	}

	token, err := h.Tokens.Sign(user.ID)

	if err != nil {
		fail(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Session retrieved successfully", gin.H{
		"token": token,
		"user":  user.Profile(),
	})
}

func (h *Auth) GetProfile(ctx *gin.Context) {
	user, err := h.currentUser(ctx)

	if err != nil {
		fail(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Profile retrieved successfully", gin.H{
		"user": user.Profile(),
	})
}

func (h *Auth) UpdateProfile(ctx *gin.Context) {
	user, err := h.currentUser(ctx)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body UpdateProfileRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid request"))
		return
	}

	updates := make(map[string]interface{})

	if body.FirstName != "" {
		if !validName(body.FirstName) {
			fail(ctx, apperrors.Validation("Please provide a valid first name"))
			return
		}
		updates["first_name"] = strings.ToLower(strings.TrimSpace(body.FirstName))
	}

	if body.LastName != "" {
		if !validName(body.LastName) {
			fail(ctx, apperrors.Validation("Please provide a valid last name"))
			return
		}
		updates["last_name"] = strings.ToLower(strings.TrimSpace(body.LastName))
	}

	if len(updates) > 0 {
		if err := db.DB.Model(user).Updates(updates).Error; err != nil {
			fail(ctx, err)
			return
		}

		if err := db.DB.First(user, user.ID).Error; err != nil {
			fail(ctx, err)
			return
		}
	}

	respond(ctx, http.StatusOK, "Profile updated successfully", gin.H{
		"user": user.Profile(),
	})
}

func (h *Auth) UpdatePassword(ctx *gin.Context) {
	user, err := h.currentUser(ctx)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body UpdatePasswordRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid request"))
		return
	}

	if !h.Hasher.Compare(body.CurrentPassword, user.HashedPassword) {
		fail(ctx, apperrors.Validation("Invalid current password"))
		return
	}

	hashed := h.Hasher.Hash(body.NewPassword)

	if err := db.DB.Model(user).Update("hashed_password", hashed).Error; err != nil {
		fail(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Password updated successfully", nil)
}

// UpdateEmail opens an email change: the candidate address is parked on a
// TempEmail record with a fresh code, the live address stays untouched.
func (h *Auth) UpdateEmail(ctx *gin.Context) {
	user, err := h.currentUser(ctx)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body UpdateEmailRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid email"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	var taken models.User

	if err := db.DB.Where("email = ?", email).First(&taken).Error; err == nil {
		fail(ctx, apperrors.Conflict("Email already exists"))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(ctx, err)
		return
	}

	code, err := generateCode()

	if err != nil {
		fail(ctx, err)
		return
	}

	tempEmail := models.TempEmail{
		SessionID: uuid.NewString(),
		Email:     email,
		Code:      code,
		UserID:    user.ID,
	}

	if err := db.DB.Create(&tempEmail).Error; err != nil {
		fail(ctx, err)
		return
	}

	if err := h.Mail.SendEmailChangeCode(email, user.FullName(), code); err != nil {
		log.Printf("Failed to send email change code to %s: %v", email, err)
	}

	respond(ctx, http.StatusCreated, "Check your email for the verification code", gin.H{
		"sessionId": tempEmail.SessionID,
		"email":     tempEmail.Email,
	})
}

func (h *Auth) ResendEmailChangeCode(ctx *gin.Context) {
	user, err := h.currentUser(ctx)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body EmailSessionRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid request"))
		return
	}

	var tempEmail models.TempEmail

	err = db.DB.Where("session_id = ? AND user_id = ?", body.SessionID, user.ID).First(&tempEmail).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, apperrors.NotFound("Session expired, please start over"))
			return
		}
		fail(ctx, err)
		return
	}

	if err := h.Mail.SendEmailChangeCode(tempEmail.Email, user.FullName(), tempEmail.Code); err != nil {
		fail(ctx, apperrors.Internal("Failed to send verification email"))
		return
	}

	respond(ctx, http.StatusOK, "Verification code resent successfully", gin.H{
		"sessionId": tempEmail.SessionID,
		"email":     tempEmail.Email,
	})
}

// VerifyNewEmail finishes an email change: the code is checked against the
// side record, the address is copied onto the user, and the record deleted.
func (h *Auth) VerifyNewEmail(ctx *gin.Context) {
	user, err := h.currentUser(ctx)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body VerifyNewEmailRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid request"))
		return
	}

	var tempEmail models.TempEmail

	err = db.DB.Where("session_id = ? AND user_id = ?", body.SessionID, user.ID).First(&tempEmail).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(ctx, apperrors.Validation("Invalid session"))
			return
		}
		fail(ctx, err)
		return
	}

	if tempEmail.Code != body.Code {
		fail(ctx, apperrors.Validation("Invalid verification code"))
		return
	}

	var taken models.User

	if err := db.DB.Where("email = ? AND id != ?", tempEmail.Email, user.ID).First(&taken).Error; err == nil {
		fail(ctx, apperrors.Conflict("Email already exists"))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		fail(ctx, err)
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("email", tempEmail.Email).Error; err != nil {
			return err
		}
		return tx.Delete(&tempEmail).Error
	})

	if err != nil {
		fail(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Email verified successfully", nil)
}
