package signing

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrInvalidKey = errors.New("invalid signing key")

// KeyDeriver turns a configured secret into the bytes handed to the HashFunc.
type KeyDeriver func(secret string) ([]byte, error)

// RawKey uses the secret bytes as-is.
func RawKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidKey)
	}
	return []byte(secret), nil
}

// HexKey decodes a hex-encoded secret.
func HexKey(secret string) ([]byte, error) {
	key, err := hex.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

// MoneticoKey derives the usable HMAC key from a 40 character merchant key.
// The first 38 characters are kept; the two trailing characters are rewritten
// depending on the ASCII range of the first one before hex decoding.
func MoneticoKey(secret string) ([]byte, error) {
	if len(secret) != 40 {
		return nil, fmt.Errorf("%w: expected 40 characters, got %d", ErrInvalidKey, len(secret))
	}

	prefix := secret[:38]
	first, second := secret[38], secret[39]

	var tail string
	switch {
	case first > 70 && first < 97:
		tail = string([]byte{first - 23, second})
	case second == 'M':
		tail = string([]byte{first, '0'})
	default:
		tail = string([]byte{first, second})
	}

	key, err := hex.DecodeString(prefix + tail)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}
