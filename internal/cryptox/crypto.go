// Package cryptox implements key derivation and the authenticated encryption
// used for note payloads.
//
// All keys are derived deterministically from seed-phrase entropy with
// argon2id, so any device holding the same phrase derives the same keys.
// Payload encryption is AES-256-GCM with a fresh random nonce per call; the
// GCM tag is appended to the ciphertext (Go's Seal convention).
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the derived key length in bytes (AES-256).
const KeySize = 32

// NonceSize is the AES-GCM nonce length in bytes.
const NonceSize = 12

// Derivation contexts. Different contexts yield independent keys from the
// same entropy. Changing any context string or argon2 parameter is a breaking
// schema change for existing accounts.
const (
	ContextEncryption = "encryption"
	ContextAccountID  = "account-id"
	ContextAuth       = "auth"
)

// saltPrefix namespaces the argon2 salt per application and schema version.
const saltPrefix = "notekeeper/v1/"

// Key is a derived symmetric key. Held in memory only; call Zero when done.
type Key []byte

// Zero overwrites the key material.
func (k Key) Zero() {
	common.WipeByteArray(k)
}

// DeriveKey derives a KeySize-byte key from seed-phrase entropy and a
// derivation context using argon2id. Deterministic per (entropy, context).
// Fails with common.ErrDerivation only on misconfiguration, never on any
// entropy that came out of a valid phrase.
func DeriveKey(entropy []byte, context string) (Key, error) {
	if len(entropy) == 0 {
		return nil, fmt.Errorf("%w: empty entropy", common.ErrDerivation)
	}
	if context == "" {
		return nil, fmt.Errorf("%w: empty context", common.ErrDerivation)
	}
	salt := []byte(saltPrefix + context)
	return Key(argon2.IDKey(entropy, salt, 1, 64*1024, 4, KeySize)), nil
}

// AccountID derives the stable account identifier the server scopes storage
// by. It is independent of the encryption key, so the server learns nothing
// about either the phrase or the payload key.
func AccountID(entropy []byte) (string, error) {
	key, err := DeriveKey(entropy, ContextAccountID)
	if err != nil {
		return "", err
	}
	defer key.Zero()
	return hex.EncodeToString(key[:16]), nil
}

// MakeVerifier returns the value presented to the server to prove possession
// of the phrase: a sha256 of the auth-context key. One-way, so the server
// cannot recover key material from it.
func MakeVerifier(key Key) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// Encrypt performs AES-256-GCM encryption of plaintext under key with a
// fresh random nonce. Returns ciphertext (tag appended) and the nonce.
func Encrypt(key Key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = common.GenerateRandByteArray(NonceSize)
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt reverses Encrypt. Fails closed: any tag mismatch, truncation, or
// key/nonce mismatch yields common.ErrAuthentication and no plaintext. Error
// messages never include key material.
func Decrypt(key Key, ciphertext, nonce []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: bad nonce length", common.ErrAuthentication)
	}
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthentication, err)
	}
	return plaintext, nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", common.ErrDerivation, KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDerivation, err)
	}
	return cipher.NewGCM(block)
}
