// Package signing builds canonical strings from ordered fields and signs or
// verifies them with a pluggable hash and key derivation.
package signing

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Signer combines the three per-provider policies. The zero values of
// DeriveKey and Encode fall back to RawKey and lower-case hex.
type Signer struct {
	Canonicalize Canonicalizer
	Hash         HashFunc
	DeriveKey    KeyDeriver
	Encode       func([]byte) string
}

func (s Signer) Canonical(f Fields) (string, error) {
	return s.Canonicalize(f)
}

// Sign canonicalizes f and signs the result.
func (s Signer) Sign(f Fields, secret string) (string, error) {
	canonical, err := s.Canonicalize(f)
	if err != nil {
		return "", err
	}
	return s.SignString(canonical, secret)
}

// SignString signs an already canonical string.
func (s Signer) SignString(canonical, secret string) (string, error) {
	derive := s.DeriveKey
	if derive == nil {
		derive = RawKey
	}
	key, err := derive(secret)
	if err != nil {
		return "", err
	}

	encode := s.Encode
	if encode == nil {
		encode = hex.EncodeToString
	}
	return encode(s.Hash(key, []byte(canonical))), nil
}

// Verify recomputes the signature of canonical and compares it to signature
// case-insensitively in constant time.
func (s Signer) Verify(canonical, secret, signature string) bool {
	if signature == "" {
		return false
	}
	expected, err := s.SignString(canonical, secret)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(expected)),
		[]byte(strings.ToLower(strings.TrimSpace(signature))),
	) == 1
}

// VerifyFields canonicalizes f, then verifies like Verify.
func (s Signer) VerifyFields(f Fields, secret, signature string) bool {
	canonical, err := s.Canonicalize(f)
	if err != nil {
		return false
	}
	return s.Verify(canonical, secret, signature)
}

// UpperHex encodes digests as upper-case hex.
func UpperHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
