package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestCredentials_RoundTripAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")

	in := Credentials{
		APIURL:       "http://localhost:8080/api/v1",
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		User:         models.UserInfo{ID: uuid.Must(uuid.NewV4()), Email: "a@example.com"},
	}
	if err := SaveCredentials(path, in); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected mode 0600, got %o", info.Mode().Perm())
	}

	out, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if out.RefreshToken != in.RefreshToken || out.User != in.User || !out.Expiry.Equal(in.Expiry) {
		t.Errorf("LoadCredentials() = %+v, want %+v", out, in)
	}

	if err := DeleteCredentials(path); err != nil {
		t.Fatal(err)
	}
	if err := DeleteCredentials(path); err != nil {
		t.Errorf("Deleting twice should succeed, got %v", err)
	}
	if _, err := LoadCredentials(path); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials, got %v", err)
	}
}

func TestLoadCredentials_Invalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("api_url: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCredentials(broken); err == nil || errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected parse error, got %v", err)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("api_url: http://x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCredentials(empty); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials without a refresh token, got %v", err)
	}
}
