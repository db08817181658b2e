package signing

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// HashFunc computes a signature digest of message under key.
type HashFunc func(key, message []byte) []byte

// HMAC returns a keyed-hash HashFunc for the given digest.
func HMAC(h func() hash.Hash) HashFunc {
	return func(key, message []byte) []byte {
		mac := hmac.New(h, key)
		mac.Write(message)
		return mac.Sum(nil)
	}
}

// Concat returns a HashFunc computing digest(message || key).
func Concat(h func() hash.Hash) HashFunc {
	return func(key, message []byte) []byte {
		d := h()
		d.Write(message)
		d.Write(key)
		return d.Sum(nil)
	}
}

var (
	HMACSHA1   = HMAC(sha1.New)
	HMACSHA256 = HMAC(sha256.New)
	HMACSHA512 = HMAC(sha512.New)
	SHA256     = Concat(sha256.New)
)
