package cryptox

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/stretchr/testify/require"
)

var testEntropy = bytes.Repeat([]byte{0xAB}, 16)

func TestDeriveKey_Deterministic(t *testing.T) {
	key1, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)
	key2, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)

	require.Equal(t, key1, key2)
	require.Len(t, key1, KeySize)
}

func TestDeriveKey_ContextsIndependent(t *testing.T) {
	enc, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)
	acc, err := DeriveKey(testEntropy, ContextAccountID)
	require.NoError(t, err)
	auth, err := DeriveKey(testEntropy, ContextAuth)
	require.NoError(t, err)

	require.NotEqual(t, enc, acc)
	require.NotEqual(t, enc, auth)
	require.NotEqual(t, acc, auth)
}

func TestDeriveKey_DifferentEntropyDifferentKey(t *testing.T) {
	other := bytes.Repeat([]byte{0xCD}, 16)

	key1, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)
	key2, err := DeriveKey(other, ContextEncryption)
	require.NoError(t, err)

	require.NotEqual(t, key1, key2)
}

func TestDeriveKey_Misconfiguration(t *testing.T) {
	_, err := DeriveKey(nil, ContextEncryption)
	require.ErrorIs(t, err, common.ErrDerivation)

	_, err = DeriveKey(testEntropy, "")
	require.ErrorIs(t, err, common.ErrDerivation)
}

func TestAccountID_StableAndScoped(t *testing.T) {
	id1, err := AccountID(testEntropy)
	require.NoError(t, err)
	id2, err := AccountID(testEntropy)
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.Len(t, id1, 32) // 16 bytes hex-encoded

	other, err := AccountID(bytes.Repeat([]byte{0xCD}, 16))
	require.NoError(t, err)
	require.NotEqual(t, id1, other)
}

func TestKey_Zero(t *testing.T) {
	key, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)
	key.Zero()
	require.Equal(t, make(Key, KeySize), key)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)

	plaintext := []byte(`{"title":"Hi","body":"world"}`)
	ciphertext, nonce, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	require.Len(t, nonce, NonceSize)
	require.NotEqual(t, plaintext, ciphertext)

	got, err := Decrypt(key, ciphertext, nonce)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestEncrypt_NonceUniquePerCall(t *testing.T) {
	key, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)

	_, n1, err := Encrypt(key, []byte("x"))
	require.NoError(t, err)
	_, n2, err := Encrypt(key, []byte("x"))
	require.NoError(t, err)
	require.NotEqual(t, n1, n2)
}

func TestDecrypt_FailsClosed(t *testing.T) {
	key, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)

	ciphertext, nonce, err := Encrypt(key, []byte("sensitive"))
	require.NoError(t, err)

	t.Run("bit flip in ciphertext", func(t *testing.T) {
		for i := range ciphertext {
			corrupted := append([]byte(nil), ciphertext...)
			corrupted[i] ^= 0x01
			_, err := Decrypt(key, corrupted, nonce)
			require.ErrorIs(t, err, common.ErrAuthentication)
		}
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		_, err := Decrypt(key, ciphertext[:len(ciphertext)-1], nonce)
		require.ErrorIs(t, err, common.ErrAuthentication)
	})

	t.Run("wrong nonce", func(t *testing.T) {
		wrong := append([]byte(nil), nonce...)
		wrong[0] ^= 0x01
		_, err := Decrypt(key, ciphertext, wrong)
		require.ErrorIs(t, err, common.ErrAuthentication)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := DeriveKey(bytes.Repeat([]byte{0xCD}, 16), ContextEncryption)
		require.NoError(t, err)
		_, err = Decrypt(other, ciphertext, nonce)
		require.ErrorIs(t, err, common.ErrAuthentication)
	})
}

func TestDecrypt_ErrorDoesNotLeakKey(t *testing.T) {
	key, err := DeriveKey(testEntropy, ContextEncryption)
	require.NoError(t, err)

	_, err = Decrypt(key, []byte("junk"), make([]byte, NonceSize))
	require.Error(t, err)
	require.NotContains(t, err.Error(), string(key))
}

func TestMakeVerifier_OneWayAndStable(t *testing.T) {
	key, err := DeriveKey(testEntropy, ContextAuth)
	require.NoError(t, err)

	v1 := MakeVerifier(key)
	v2 := MakeVerifier(key)
	require.Equal(t, v1, v2)
	require.Len(t, v1, 32)
	require.NotEqual(t, []byte(key), v1)
}
