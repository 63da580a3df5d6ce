package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUIDRoundTrip(t *testing.T) {
	uid := EncodeUID(42)
	id, err := DecodeUID(uid)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	_, err = DecodeUID("!!not base64!!")
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	tok := Make("secret", 7, false)
	require.True(t, Check("secret", 7, false, tok))
}

func TestCheck_InvalidatedByActivation(t *testing.T) {
	// The active flag participates in the MAC: once the account is active
	// the same token must stop verifying.
	tok := Make("secret", 7, false)
	require.False(t, Check("secret", 7, true, tok))
}

func TestCheck_WrongSecretOrUser(t *testing.T) {
	tok := Make("secret", 7, false)
	require.False(t, Check("other", 7, false, tok))
	require.False(t, Check("secret", 8, false, tok))
}

func TestCheck_Malformed(t *testing.T) {
	require.False(t, Check("secret", 7, false, ""))
	require.False(t, Check("secret", 7, false, "no-separator-at-all!"))
	require.False(t, Check("secret", 7, false, "-justadash"))
	require.False(t, Check("secret", 7, false, "zzzzzzzzzzzzzzzzzz-deadbeef"))
}
