package session

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealedKeeper wraps another Keeper and seals the credential at rest so a
// leaked credential file is useless without the key.
type SealedKeeper struct {
	inner Keeper
	aead  cipher.AEAD
}

// NewSealedKeeper requires a 32-byte key.
func NewSealedKeeper(inner Keeper, key []byte) (*SealedKeeper, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("session/sealed: bad seal key, %w", err)
	}
	return &SealedKeeper{inner: inner, aead: aead}, nil
}

func (sk *SealedKeeper) Save(token string) error {
	nonce := make([]byte, sk.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("session/sealed: can't generate nonce, %w", err)
	}

	sealed := sk.aead.Seal(nonce, nonce, []byte(token), nil)
	return sk.inner.Save(base64.StdEncoding.EncodeToString(sealed))
}

func (sk *SealedKeeper) Load() (string, error) {
	stored, err := sk.inner.Load()
	if err != nil || stored == `` {
		return ``, err
	}

	sealed, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return ``, fmt.Errorf("session/sealed: stored credential is not base64, %w", err)
	}
	if len(sealed) < sk.aead.NonceSize() {
		return ``, errors.New("session/sealed: stored credential is truncated")
	}

	nonce, ciphertext := sealed[:sk.aead.NonceSize()], sealed[sk.aead.NonceSize():]
	token, err := sk.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ``, fmt.Errorf("session/sealed: can't unseal credential, %w", err)
	}
	return string(token), nil
}

func (sk *SealedKeeper) Clear() error {
	return sk.inner.Clear()
}
