package utils_test

import (
	"errors"
	"testing"
	"time"

	"taskify/backend/internal/utils"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

func TestParseJWT_InvalidToken(t *testing.T) {
	_, err := utils.ParseJWT("invalid.jwt.token", "secret")
	if err == nil {
		t.Error("Expected error for invalid JWT token, got nil")
	}
}

func TestIsValidUUID_Valid(t *testing.T) {
	validUUID := uuid.Must(uuid.NewV4()).String()

	if !utils.IsValidUUID(validUUID) {
		t.Errorf("Expected valid UUID %s to return true", validUUID)
	}
}

func TestIsValidUUID_Invalid(t *testing.T) {
	invalidUUIDs := []string{
		"invalid-uuid",
		"",
		"123-456-789",
		"not-a-uuid-at-all",
	}

	for _, invalid := range invalidUUIDs {
		if utils.IsValidUUID(invalid) {
			t.Errorf("Expected invalid UUID %s to return false", invalid)
		}
	}
}

func signTestToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestParseJWT_Valid(t *testing.T) {
	userID := uuid.Must(uuid.NewV4()).String()
	token := signTestToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := utils.ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}
	if utils.ClaimString(claims, "sub") != userID {
		t.Errorf("Expected sub %s, got %v", userID, claims["sub"])
	}
	if utils.ClaimString(claims, "missing") != "" {
		t.Error("Expected empty string for missing claim")
	}
}

func TestParseJWT_Rejects(t *testing.T) {
	expired := signTestToken(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := signTestToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	wrongAlg := signTestToken(t, jwt.SigningMethodHS512, []byte("secret"), jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	for name, token := range map[string]string{"expired": expired, "wrong key": wrongKey, "wrong alg": wrongAlg} {
		if _, err := utils.ParseJWT(token, "secret"); !errors.Is(err, utils.ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
