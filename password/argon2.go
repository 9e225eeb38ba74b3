package password

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
)

// Params are the argon2id work factors. They are validated once at
// construction; an invalid set is a configuration error, never a
// per-request condition.
type Params struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Hasher derives fixed-length keys from passwords with argon2id. Credential
// records store the per-user salt and the derived key separately; the
// params live in configuration, not in the stored hash.
type Hasher struct {
	params Params
}

func NewHasher(p Params) (*Hasher, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}
	return &Hasher{params: p}, nil
}

// Params returns the active work factors.
func (h *Hasher) Params() Params {
	return h.params
}

// Provision generates a fresh random salt and returns it together with the
// key derived from password and that salt.
func (h *Hasher) Provision(password string) (salt, key []byte, err error) {
	salt = make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, err
	}

	key, err = h.Derive(password, salt)
	if err != nil {
		return nil, nil, err
	}
	return salt, key, nil
}

// Derive computes the argon2id key for (password, salt). Password bytes are
// used exactly as provided (no Unicode normalization). A salt of the wrong
// length means the credential record and the configuration disagree, which
// is fatal, not retryable.
func (h *Hasher) Derive(password string, salt []byte) ([]byte, error) {
	if uint32(len(salt)) != h.params.SaltLength {
		return nil, fmt.Errorf("salt length %d does not match configured %d", len(salt), h.params.SaltLength)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)
	return key, nil
}

// Verify reports whether password derives to expected under salt. The
// comparison is constant-time; a short-circuiting equality check would leak
// the matching prefix length.
func (h *Hasher) Verify(password string, salt, expected []byte) (bool, error) {
	computed, err := h.Derive(password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

func validateParams(p Params) error {
	if p.Memory < minMemoryKB {
		return errors.New("argon2 memory below minimum (8192 KB)")
	}
	if p.Time < minTimeCost {
		return errors.New("argon2 time cost below minimum (1)")
	}
	if p.Parallelism < minParallelism {
		return errors.New("argon2 parallelism below minimum (1)")
	}
	if p.SaltLength < minSaltLength {
		return errors.New("argon2 salt length below minimum (16)")
	}
	if p.KeyLength < minKeyLength {
		return errors.New("argon2 key length below minimum (16)")
	}
	return nil
}
