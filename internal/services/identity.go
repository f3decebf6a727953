package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/mailer"
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IdentityService owns the credential lifecycle: registration, login, token
// refresh, password change and password reset.
type IdentityService struct {
	conn   *gorm.DB
	tokens *auth.TokenManager
	mail   *mailer.Mailer
}

func NewIdentityService(conn *gorm.DB, tokens *auth.TokenManager, mail *mailer.Mailer) *IdentityService {
	return &IdentityService{conn: conn, tokens: tokens, mail: mail}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (s *IdentityService) Register(name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	if !emailPattern.MatchString(email) {
		return nil, apperrors.Validation("Invalid email address")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	var existing models.User
	err := s.conn.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("Email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.conn.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Email already exists")
		}
		return nil, err
	}

	s.mail.SendWelcome(user)

	return &user, nil
}

// Login deliberately reports the same error for an unknown email and a wrong
// password so callers cannot probe which accounts exist.
func (s *IdentityService) Login(email, password string) (*models.User, *TokenPair, error) {
	email = normalizeEmail(email)

	var user models.User
	err := s.conn.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.Auth("Invalid email or password")
		}
		return nil, nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, nil, apperrors.Auth("Invalid email or password")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, nil, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return &user, &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *IdentityService) RefreshAccessToken(refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", apperrors.Auth("Refresh token is required")
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.Auth("Invalid or expired refresh token")
	}

	var user models.User
	if err := s.conn.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.Auth("Invalid or expired refresh token")
		}
		return "", err
	}

	return s.tokens.GenerateAccessToken(user.ID)
}

func (s *IdentityService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperrors.Validation("Current password and new password are required")
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	var user models.User
	if err := s.conn.First(&user, userID).Error; err != nil {
		return err
	}

	if !auth.CheckPassword(currentPassword, user.PasswordHash) {
		return apperrors.Auth("Current password is incorrect")
	}

	// Compared through the stored hash, not string equality, so the check
	// also holds when the caller re-sends the current password.
	if auth.CheckPassword(newPassword, user.PasswordHash) {
		return apperrors.Validation("New password must be different from the current password")
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.conn.Model(&user).Update("password_hash", passwordHash).Error
}

// RequestPasswordReset never reveals whether the email belongs to an account:
// the caller gets the same outcome either way, and the email (if any) is sent
// on a best-effort background goroutine.
func (s *IdentityService) RequestPasswordReset(email string) error {
	email = normalizeEmail(email)

	var user models.User
	err := s.conn.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	// Signed with the current password hash: changing the password makes
	// every outstanding reset token unverifiable.
	token, err := s.tokens.GenerateResetToken(user.ID, user.PasswordHash)
	if err != nil {
		return err
	}

	expiry := time.Now().Add(auth.ResetTokenTTL)
	updates := map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}
	if err := s.conn.Model(&user).Updates(updates).Error; err != nil {
		return err
	}

	s.mail.SendPasswordReset(user, token)

	return nil
}

func (s *IdentityService) ResetPassword(token, newPassword string) error {
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return apperrors.Validation("Reset token and new password are required")
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	var user models.User
	err := s.conn.Where("reset_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Auth("Invalid or expired reset token")
		}
		return err
	}

	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		if err := s.clearResetToken(&user); err != nil {
			return err
		}
		return apperrors.Auth("Reset token has expired")
	}

	if _, err := s.tokens.VerifyResetToken(token, user.PasswordHash); err != nil {
		return apperrors.Auth("Invalid reset token")
	}

	if auth.CheckPassword(newPassword, user.PasswordHash) {
		return apperrors.Validation("New password must be different from the current password")
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.conn.Model(&user).Updates(map[string]interface{}{
		"password_hash":      passwordHash,
		"reset_token":        nil,
		"reset_token_expiry": nil,
	}).Error
}

func (s *IdentityService) clearResetToken(user *models.User) error {
	return s.conn.Model(user).Updates(map[string]interface{}{
		"reset_token":        nil,
		"reset_token_expiry": nil,
	}).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
