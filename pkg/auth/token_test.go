package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenRoundTrip(t *testing.T) {
	keyring.MockInit()

	_, err := GetToken()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, SetToken("tok_test123"))

	got, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, "tok_test123", got)

	require.NoError(t, DeleteToken())
	_, err = GetToken()
	assert.ErrorIs(t, err, ErrNoToken)

	// deleting again is a no-op
	assert.NoError(t, DeleteToken())
}

func TestSetToken_Empty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, SetToken(""))
}

func TestGetToken_EnvOverride(t *testing.T) {
	keyring.MockInit()
	t.Setenv(TokenEnvVar, "tok_env")

	got, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, "tok_env", got)
}
