package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// TokenSize is the raw byte length of every opaque token issued by the
// engine (session identifiers and CSRF tokens). 32 bytes gives 256 bits of
// entropy, comfortably above the 128-bit uniqueness floor.
const TokenSize = 32

type Token [TokenSize]byte

func NewToken() (Token, error) {
	var t Token
	_, err := rand.Read(t[:])
	return t, err
}

func (t Token) Bytes() []byte {
	return t[:]
}

func (t Token) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(t[:])
}

// NewTokenString mints a fresh token and returns its string form.
func NewTokenString() (string, error) {
	t, err := NewToken()
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// ParseToken rejects values that cannot be a token the engine issued.
// Used to cheaply discard garbage cookie values before hitting a backend.
func ParseToken(value string) (Token, error) {
	var t Token

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return t, err
	}
	if len(raw) != len(t) {
		return t, errors.New("invalid token size")
	}

	copy(t[:], raw)
	return t, nil
}
