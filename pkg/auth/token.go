package auth

import (
	"os"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "lingopulse"
	keyringUser    = "inference-token"

	// TokenEnvVar overrides the keyring when set.
	TokenEnvVar = "LINGOPULSE_TOKEN"
)

// ErrNoToken is returned when no token is stored anywhere.
var ErrNoToken = errors.New("no inference token found")

// SetToken stores the inference API token in the OS keyring.
func SetToken(token string) error {
	if token == "" {
		return errors.New("token is required")
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		return errors.Wrap(err, "failed to store token in keyring")
	}
	return nil
}

// GetToken returns the inference API token: the env var when set, the OS
// keyring otherwise. ErrNoToken when neither has one.
func GetToken() (string, error) {
	if t := os.Getenv(TokenEnvVar); t != "" {
		return t, nil
	}
	t, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", errors.Wrap(err, "failed to read token from keyring")
	}
	if t == "" {
		return "", ErrNoToken
	}
	return t, nil
}

// DeleteToken removes the stored token. Deleting an absent token is not an
// error.
func DeleteToken() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "failed to delete token from keyring")
	}
	return nil
}
