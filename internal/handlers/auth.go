package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/chachabrian/tripguard-backend/internal/database"
	"github.com/chachabrian/tripguard-backend/internal/middleware"
	"github.com/chachabrian/tripguard-backend/internal/models"
	"github.com/chachabrian/tripguard-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpassword"`
	PhoneNo  string `json:"phoneNo" binding:"required,phone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyInput struct {
	Email           string `json:"email" binding:"required,email"`
	VerificationOTP string `json:"verificationOTP" binding:"required"`
}

type ForgetPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Email             string `json:"email" binding:"required,email"`
	VerificationOTP   string `json:"verificationOTP" binding:"required"`
	NewPassword       string `json:"newPassword" binding:"required,strongpassword"`
	VerifyNewPassword string `json:"verifyNewPassword" binding:"required,eqfield=NewPassword"`
}

type UpdatePasswordInput struct {
	NewPassword       string `json:"newPassword" binding:"required,strongpassword"`
	VerifyNewPassword string `json:"verifyNewPassword" binding:"required,eqfield=NewPassword"`
}

// bindError answers a failed bind with a readable 400.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		utils.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	utils.Fail(c, http.StatusBadRequest, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email format"
	case "strongpassword":
		return "Password must be at least 6 characters and contain at least one uppercase letter, one lowercase letter, and one digit"
	case "phone":
		return "Invalid phone number format"
	case "eqfield":
		return "Passwords do not match"
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("%s is out of range", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// Register creates an unverified account and emails its verification code.
func Register(d *Deps, isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		ctx := c.Request.Context()

		if _, err := d.Store.GetUserByUsername(ctx, input.Username); err == nil {
			utils.Fail(c, http.StatusBadRequest, "User with this Username already exists. Please change your username if you are registering for first time.")
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			log.Printf("Error adding user: %v", err)
			utils.InternalError(c)
			return
		}

		if _, err := d.Store.GetUserByPhone(ctx, input.PhoneNo); err == nil {
			utils.Fail(c, http.StatusBadRequest, "User with this PhoneNo already exists. Please change your phone number.")
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			log.Printf("Error adding user: %v", err)
			utils.InternalError(c)
			return
		}

		existing, err := d.Store.GetUserByEmail(ctx, input.Email)
		switch {
		case err == nil && existing.IsVerified:
			utils.Fail(c, http.StatusBadRequest, "User with this email already exists")
			return
		case err == nil:
			d.Notifier.SendVerificationOTP(existing.Email, existing.VerificationOTP)
			utils.Success(c, http.StatusOK, "Your account is not verified yet. Verification OTP is sent your registered email.", nil)
			return
		case !errors.Is(err, database.ErrNotFound):
			log.Printf("Error adding user: %v", err)
			utils.InternalError(c)
			return
		}

		hash, err := models.HashPassword(input.Password, d.PasswordCost)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			utils.InternalError(c)
			return
		}
		otp, err := utils.GenerateOTP()
		if err != nil {
			log.Printf("Error adding user: %v", err)
			utils.InternalError(c)
			return
		}

		user := models.User{
			Username:        input.Username,
			Email:           input.Email,
			PhoneNo:         input.PhoneNo,
			PasswordHash:    hash,
			IsAdmin:         isAdmin,
			VerificationOTP: otp,
		}
		if err := d.Store.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				utils.Fail(c, http.StatusBadRequest, "User with this username, phone number or email already exists")
				return
			}
			log.Printf("Error adding user: %v", err)
			utils.InternalError(c)
			return
		}

		d.Notifier.SendVerificationOTP(user.Email, otp)

		log.Printf("User with %s added successfully.", user.Username)
		utils.Success(c, http.StatusCreated, "User created successfully. Please verify your account. An OTP is sent to your registered email ID.", nil)
	}
}

// Verify confirms an account with the emailed code.
func Verify(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input VerifyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		ctx := c.Request.Context()

		user, err := d.Store.GetUserByEmail(ctx, input.Email)
		if errors.Is(err, database.ErrNotFound) {
			utils.Fail(c, http.StatusBadRequest, "Please enter correct email ID")
			return
		}
		if err != nil {
			log.Printf("Error verifying user: %v", err)
			utils.InternalError(c)
			return
		}

		if user.IsVerified {
			utils.Success(c, http.StatusOK, "Account already verified", nil)
			return
		}

		next, err := utils.GenerateOTP()
		if err != nil {
			log.Printf("Error verifying user: %v", err)
			utils.InternalError(c)
			return
		}
		if err := d.Store.VerifyUser(ctx, input.Email, input.VerificationOTP, next); err != nil {
			if errors.Is(err, database.ErrInvalidOTP) {
				utils.Fail(c, http.StatusBadRequest, "Invalid OTP. Please enter correct OTP")
				return
			}
			log.Printf("Error verifying user: %v", err)
			utils.InternalError(c)
			return
		}

		log.Printf("Account for %s verified successfully.", input.Email)
		utils.Success(c, http.StatusOK, "Account verified successfully", nil)
	}
}

// Login issues a token to a verified account.
func Login(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		user, err := d.Store.GetUserByEmail(c.Request.Context(), input.Email)
		if errors.Is(err, database.ErrNotFound) {
			utils.Fail(c, http.StatusBadRequest, "Account does not exist")
			return
		}
		if err != nil {
			log.Printf("Error logging in: %v", err)
			utils.InternalError(c)
			return
		}

		if !user.IsVerified {
			utils.Fail(c, http.StatusBadRequest, "Account not verified. Verify the account to log in.")
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			utils.Fail(c, http.StatusBadRequest, "Incorrect Password")
			return
		}

		token, err := utils.GenerateToken(user.ID, d.JWTSecret, d.TokenTTL)
		if err != nil {
			log.Printf("Error generating token: %v", err)
			utils.InternalError(c)
			return
		}

		log.Printf("User %s logged in.", user.Username)
		utils.Success(c, http.StatusOK, "Login successful", gin.H{"token": token})
	}
}

// ForgetPassword rotates the account code and emails it.
func ForgetPassword(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ForgetPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		otp, err := utils.GenerateOTP()
		if err != nil {
			log.Printf("Error in forget password: %v", err)
			utils.InternalError(c)
			return
		}

		if err := d.Store.SetVerificationOTP(c.Request.Context(), input.Email, otp); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.Fail(c, http.StatusBadRequest, "Account does not exist")
				return
			}
			log.Printf("Error in forget password: %v", err)
			utils.InternalError(c)
			return
		}

		d.Notifier.SendPasswordResetOTP(input.Email, otp)

		utils.Success(c, http.StatusOK,
			fmt.Sprintf("An email with an OTP is sent to %s. Please use this OTP to reset your password.", input.Email), nil)
	}
}

// ResetPassword sets a new password when the code matches.
func ResetPassword(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ResetPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		ctx := c.Request.Context()

		if _, err := d.Store.GetUserByEmail(ctx, input.Email); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.Fail(c, http.StatusBadRequest, "User does not exist")
				return
			}
			log.Printf("Error resetting password: %v", err)
			utils.InternalError(c)
			return
		}

		hash, err := models.HashPassword(input.NewPassword, d.PasswordCost)
		if err != nil {
			log.Printf("Error resetting password: %v", err)
			utils.InternalError(c)
			return
		}
		next, err := utils.GenerateOTP()
		if err != nil {
			log.Printf("Error resetting password: %v", err)
			utils.InternalError(c)
			return
		}

		if err := d.Store.ResetPassword(ctx, input.Email, input.VerificationOTP, hash, next); err != nil {
			if errors.Is(err, database.ErrInvalidOTP) {
				utils.Fail(c, http.StatusBadRequest, "Invalid OTP")
				return
			}
			log.Printf("Error resetting password: %v", err)
			utils.InternalError(c)
			return
		}

		log.Printf("Password reset successfully for %s", input.Email)
		utils.Success(c, http.StatusOK, "Password reset successfully", nil)
	}
}

// UpdatePassword changes the caller's password.
func UpdatePassword(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdatePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}
		id, _ := middleware.IdentityFrom(c)

		hash, err := models.HashPassword(input.NewPassword, d.PasswordCost)
		if err != nil {
			log.Printf("Error updating password: %v", err)
			utils.InternalError(c)
			return
		}

		if err := d.Store.UpdatePassword(c.Request.Context(), id.UserID, hash); err != nil {
			log.Printf("Error updating password: %v", err)
			utils.InternalError(c)
			return
		}

		log.Printf("Password updated successfully for %s", id.Username)
		utils.Success(c, http.StatusOK, "Password updated successfully", nil)
	}
}
