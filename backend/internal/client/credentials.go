package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskify/backend/internal/models"

	"gopkg.in/yaml.v3"
)

var ErrNoCredentials = errors.New("not logged in")

// Credentials is what the CLI keeps between runs.
type Credentials struct {
	APIURL       string          `yaml:"api_url"`
	AccessToken  string          `yaml:"access_token"`
	RefreshToken string          `yaml:"refresh_token"`
	Expiry       time.Time       `yaml:"expiry"`
	User         models.UserInfo `yaml:"user"`
}

func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "taskify", "credentials.yaml"), nil
}

func LoadCredentials(path string) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return creds, ErrNoCredentials
	}
	if err != nil {
		return creds, err
	}

	if err := yaml.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if creds.RefreshToken == "" {
		return creds, ErrNoCredentials
	}
	return creds, nil
}

// SaveCredentials writes the file readable by the owner only.
func SaveCredentials(path string, creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func DeleteCredentials(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
