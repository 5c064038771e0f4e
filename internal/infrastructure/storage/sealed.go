package storage

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/nappylocks/client-sdk/internal/core/domain"
	"github.com/nappylocks/client-sdk/internal/core/ports"
)

const (
	saltSize  = 16
	nonceSize = 24
)

// Sealed encrypts slot contents at rest with a key derived from a local
// secret. The persisted session carries a bearer token, so it never touches
// disk in the clear.
//
// Blob layout: salt(16) || nonce(24) || secretbox ciphertext. A fresh salt
// and nonce are drawn per write. Any blob that fails to parse or open is
// reported as an empty slot: a sealed slot that cannot be decrypted is
// indistinguishable from corruption, and corruption means logged-out, not
// an error.
type Sealed struct {
	inner  ports.StateStorage
	secret []byte
}

// NewSealed wraps inner so every slot is encrypted with key material derived
// from secret.
func NewSealed(inner ports.StateStorage, secret string) (*Sealed, error) {
	if secret == "" {
		return nil, fmt.Errorf("sealed storage: empty secret")
	}
	return &Sealed{inner: inner, secret: []byte(secret)}, nil
}

func (s *Sealed) Save(ctx context.Context, slot string, data []byte) error {
	var salt [saltSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return fmt.Errorf("seal %s: %w", slot, err)
	}
	key, err := s.deriveKey(salt[:])
	if err != nil {
		return fmt.Errorf("seal %s: %w", slot, err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("seal %s: %w", slot, err)
	}

	blob := make([]byte, 0, saltSize+nonceSize+len(data)+secretbox.Overhead)
	blob = append(blob, salt[:]...)
	blob = append(blob, nonce[:]...)
	blob = secretbox.Seal(blob, data, &nonce, key)

	return s.inner.Save(ctx, slot, blob)
}

func (s *Sealed) Load(ctx context.Context, slot string) ([]byte, error) {
	blob, err := s.inner.Load(ctx, slot)
	if err != nil {
		return nil, err
	}
	if len(blob) < saltSize+nonceSize+secretbox.Overhead {
		return nil, domain.ErrSlotEmpty
	}

	key, err := s.deriveKey(blob[:saltSize])
	if err != nil {
		return nil, fmt.Errorf("unseal %s: %w", slot, err)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], blob[saltSize:saltSize+nonceSize])

	data, ok := secretbox.Open(nil, blob[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, domain.ErrSlotEmpty
	}
	return data, nil
}

func (s *Sealed) Delete(ctx context.Context, slot string) error {
	return s.inner.Delete(ctx, slot)
}

func (s *Sealed) deriveKey(salt []byte) (*[32]byte, error) {
	raw, err := scrypt.Key(s.secret, salt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, err
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}
