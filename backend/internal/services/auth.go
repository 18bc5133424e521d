package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskify/backend/internal/models"
	"taskify/backend/internal/utils"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type TokenConfig struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthService interface {
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
	GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error)
	RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error)
	RevokeToken(db *gorm.DB, refreshToken string) error
	GetUser(db *gorm.DB, userID uuid.UUID) (*models.User, error)
	ExpiresIn() int64
}

type AuthServiceImpl struct {
	config TokenConfig
}

func NewAuthService(config TokenConfig) *AuthServiceImpl {
	if config.AccessTTL <= 0 {
		config.AccessTTL = time.Hour
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = 7 * 24 * time.Hour
	}
	return &AuthServiceImpl{config: config}
}

// ExpiresIn is the access token lifetime in seconds.
func (s *AuthServiceImpl) ExpiresIn() int64 {
	return int64(s.config.AccessTTL / time.Second)
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AuthServiceImpl) GetUser(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthServiceImpl) parserOptions() []jwt.ParserOption {
	var opts []jwt.ParserOption
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if s.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.config.Audience))
	}
	return opts
}

// ParseAccessToken validates an access token and returns the user it was issued to.
func (s *AuthServiceImpl) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims, err := utils.ParseJWT(tokenString, s.config.Secret, s.parserOptions()...)
	if err != nil {
		return uuid.Nil, err
	}
	if utils.ClaimString(claims, "type") != tokenTypeAccess {
		return uuid.Nil, fmt.Errorf("%w: not an access token", utils.ErrInvalidToken)
	}
	userID, err := uuid.FromString(utils.ClaimString(claims, "user_id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid user_id", utils.ErrInvalidToken)
	}
	return userID, nil
}

// parseRefreshToken returns the jti and user of a well-formed refresh token.
func (s *AuthServiceImpl) parseRefreshToken(refreshToken string) (uuid.UUID, uuid.UUID, error) {
	claims, err := utils.ParseJWT(refreshToken, s.config.Secret, s.parserOptions()...)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	if utils.ClaimString(claims, "type") != tokenTypeRefresh {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid token type", ErrInvalidRefreshToken)
	}

	jti, err := uuid.FromString(utils.ClaimString(claims, "jti"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid jti", ErrInvalidRefreshToken)
	}

	userID, err := uuid.FromString(utils.ClaimString(claims, "user_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid user_id", ErrInvalidRefreshToken)
	}

	return jti, userID, nil
}

// RefreshToken exchanges a stored refresh token for a new pair. The old
// refresh token is deleted so it cannot be replayed.
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error) {
	jti, userID, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return "", "", 0, err
	}

	var dbToken models.Token
	err = db.Where("jti = ? AND user_id = ? AND expires_at > ?", jti, userID, time.Now()).First(&dbToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", 0, fmt.Errorf("%w: not found or expired", ErrInvalidRefreshToken)
		}
		return "", "", 0, fmt.Errorf("database error: %w", err)
	}

	result := db.Where("id = ?", dbToken.ID).Delete(&models.Token{})
	if result.Error != nil {
		return "", "", 0, fmt.Errorf("failed to delete old token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", "", 0, fmt.Errorf("%w: already used", ErrInvalidRefreshToken)
	}

	accessToken, newRefreshToken, err := s.GenerateToken(db, userID)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	return accessToken, newRefreshToken, s.ExpiresIn(), nil
}

func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	jti, _, err := s.parseRefreshToken(refreshToken)
	if err != nil {
		return err
	}

	return db.Where("jti = ?", jti).Delete(&models.Token{}).Error
}

func (s *AuthServiceImpl) GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error) {
	now := time.Now()

	accessTokenClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"sub":     userID.String(),
		"type":    tokenTypeAccess,
		"iat":     now.Unix(),
		"exp":     now.Add(s.config.AccessTTL).Unix(),
		"iss":     s.config.Issuer,
		"aud":     s.config.Audience,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	jti, err := uuid.NewV4()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate jti: %w", err)
	}

	refreshTokenExpiry := now.Add(s.config.RefreshTTL)
	refreshTokenClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"type":    tokenTypeRefresh,
		"jti":     jti.String(),
		"iat":     now.Unix(),
		"exp":     refreshTokenExpiry.Unix(),
		"iss":     s.config.Issuer,
		"aud":     s.config.Audience,
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshTokenClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	tokenRecord := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		JTI:          jti,
		RefreshToken: refreshTokenString,
		ExpiresAt:    refreshTokenExpiry,
	}

	if err := db.Create(&tokenRecord).Error; err != nil {
		return "", "", fmt.Errorf("failed to create token record: %w", err)
	}

	return accessTokenString, refreshTokenString, nil
}
