package vault

import (
	"bytes"
	"testing"
)

func TestDeriveKeyLength(t *testing.T) {
	key := defaultKDF.derive([]byte("test-password"), make([]byte, saltLen))
	if len(key) != keyLen {
		t.Errorf("expected %d byte key, got %d", keyLen, len(key))
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := []byte("fixed-salt-value")
	if !bytes.Equal(defaultKDF.derive([]byte("pw"), salt), defaultKDF.derive([]byte("pw"), salt)) {
		t.Error("same password+salt should produce same key")
	}
	if bytes.Equal(defaultKDF.derive([]byte("pw1"), salt), defaultKDF.derive([]byte("pw2"), salt)) {
		t.Error("different passwords should produce different keys")
	}
}

func TestSealOpen(t *testing.T) {
	key := make([]byte, keyLen)
	plaintext := []byte(`{"home":{"token":"abc"}}`)

	sealed, err := seal(key, plaintext)
	if err != nil {
		t.Fatalf("seal() error: %v", err)
	}
	if bytes.Contains(sealed, []byte("abc")) {
		t.Error("sealed data should not contain the plaintext")
	}
	got, err := open(key, sealed)
	if err != nil {
		t.Fatalf("open() error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("got %q, want %q", got, plaintext)
	}
}

func TestOpenWrongKeyOrShortInput(t *testing.T) {
	key1 := make([]byte, keyLen)
	key2 := make([]byte, keyLen)
	key2[0] = 1

	sealed, err := seal(key1, []byte("secret"))
	if err != nil {
		t.Fatalf("seal() error: %v", err)
	}
	if _, err := open(key2, sealed); err == nil {
		t.Error("open with wrong key should fail")
	}
	if _, err := open(key1, []byte{1, 2}); err == nil {
		t.Error("open of truncated input should fail")
	}
}

func TestNewSalt(t *testing.T) {
	a, err := newSalt()
	if err != nil {
		t.Fatalf("newSalt() error: %v", err)
	}
	b, _ := newSalt()
	if len(a) != saltLen {
		t.Errorf("expected %d byte salt, got %d", saltLen, len(a))
	}
	if bytes.Equal(a, b) {
		t.Error("two salts should differ")
	}
}
