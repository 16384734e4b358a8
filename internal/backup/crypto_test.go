package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	original := []byte(`{"version":2,"data":{}}`)

	sealed, err := Seal(original, "test-passphrase-123")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, original) {
		t.Error("sealed output contains plaintext")
	}
	if len(sealed) < saltSize+nonceSize+len(original) {
		t.Errorf("sealed length = %d, too short", len(sealed))
	}

	opened, err := Open(sealed, "test-passphrase-123")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, original) {
		t.Errorf("opened = %q, want %q", opened, original)
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("secret data"), "correct-passphrase")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(sealed, "wrong-passphrase"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
}

func TestOpenTooSmall(t *testing.T) {
	if _, err := Open([]byte("short"), "pass"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
}

func TestOpenTampered(t *testing.T) {
	sealed, err := Seal([]byte("original data"), "pass")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xFF
	if _, err := Open(sealed, "pass"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("err = %v, want ErrDecrypt", err)
	}
}
