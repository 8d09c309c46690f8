// Package mnemonic generates and validates BIP-39 seed phrases. A phrase
// encodes 128 bits of entropy plus a checksum as 12 English words; the decoded
// entropy is the canonical identity of a phrase and the input to key derivation.
package mnemonic

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/tyler-smith/go-bip39"
)

// EntropyBits is the entropy size encoded by generated phrases.
const EntropyBits = 128

// Generate produces a new random 12-word seed phrase.
// Fails with common.ErrEntropySource if the system random source is unavailable.
func Generate() (string, error) {
	entropy, err := bip39.NewEntropy(EntropyBits)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEntropySource, err)
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEntropySource, err)
	}
	return phrase, nil
}

// Validate reports whether phrase is a well-formed seed phrase with a correct
// checksum. Malformed input yields false, never an error.
func Validate(phrase string) bool {
	return bip39.IsMnemonicValid(normalize(phrase))
}

// Entropy decodes the entropy bytes encoded by phrase. Two phrases are the
// same identity iff their entropy is equal.
func Entropy(phrase string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(normalize(phrase))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFormat, err)
	}
	return entropy, nil
}

// normalize collapses whitespace and lowercases so user-entered phrases with
// stray spacing still validate.
func normalize(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}
