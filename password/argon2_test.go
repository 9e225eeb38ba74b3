package password

import (
	"bytes"
	"testing"
)

func testParams() Params {
	return Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestNewHasherRejectsWeakParams(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"memory", func(p *Params) { p.Memory = 1024 }},
		{"time", func(p *Params) { p.Time = 0 }},
		{"parallelism", func(p *Params) { p.Parallelism = 0 }},
		{"salt", func(p *Params) { p.SaltLength = 8 }},
		{"key", func(p *Params) { p.KeyLength = 8 }},
	}

	for _, tc := range cases {
		p := testParams()
		tc.mutate(&p)
		if _, err := NewHasher(p); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

func TestDeriveDeterministic(t *testing.T) {
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	salt := bytes.Repeat([]byte{0x42}, 16)

	k1, err := h.Derive("Secret123!", salt)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	k2, err := h.Derive("Secret123!", salt)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}

	if !bytes.Equal(k1, k2) {
		t.Fatal("same password+salt produced different keys")
	}
	if len(k1) != 32 {
		t.Fatalf("key length = %d, want 32", len(k1))
	}
}

func TestDeriveRejectsWrongSaltLength(t *testing.T) {
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	if _, err := h.Derive("Secret123!", []byte("short")); err == nil {
		t.Fatal("expected error for mismatched salt length")
	}
}

func TestProvisionUniqueSalts(t *testing.T) {
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	s1, k1, err := h.Provision("Secret123!")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	s2, k2, err := h.Provision("Secret123!")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if bytes.Equal(s1, s2) {
		t.Fatal("two provisions produced identical salts")
	}
	if bytes.Equal(k1, k2) {
		t.Fatal("different salts produced identical keys")
	}
}

func TestVerify(t *testing.T) {
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	salt, key, err := h.Provision("Secret123!")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	ok, err := h.Verify("Secret123!", salt, key)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = h.Verify("wrong-password", salt, key)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}
