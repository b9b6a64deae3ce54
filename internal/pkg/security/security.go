// Package security provides the storefront's small cryptographic and password helpers.
// It seals the durable credentials file with XChaCha20-Poly1305 under a key derived
// from a passphrase with Argon2id, and grades password strength for the registration form.
package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCiphertextTooShort indicates sealed data shorter than a nonce.
var ErrCiphertextTooShort = errors.New("security: ciphertext too short")

const saltSize = 16

// Argon2id parameters for deriving the sealing key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Sealer encrypts and decrypts small blobs with a passphrase-derived key.
type Sealer struct {
	passphrase []byte
}

// NewSealer returns a Sealer for the passphrase.
func NewSealer(passphrase string) *Sealer {
	return &Sealer{passphrase: []byte(passphrase)}
}

func (s *Sealer) key(salt []byte) []byte {
	return argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

// Seal encrypts plaintext. The result is salt || nonce || ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("security: generate salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key(salt))
	if err != nil {
		return nil, fmt.Errorf("security: create AEAD: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("security: generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, ErrCiphertextTooShort
	}

	salt := sealed[:saltSize]
	aead, err := chacha20poly1305.NewX(s.key(salt))
	if err != nil {
		return nil, fmt.Errorf("security: create AEAD: %w", err)
	}

	nonce := sealed[saltSize : saltSize+aead.NonceSize()]
	plain, err := aead.Open(nil, nonce, sealed[saltSize+aead.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("security: open sealed data: %w", err)
	}
	return plain, nil
}

// Strength grades a password on a three-step scale.
type Strength struct {
	Level        int          `json:"level"`
	Label        string       `json:"label"`
	Requirements Requirements `json:"requirements"`
}

// Requirements lists which password rules are met.
type Requirements struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	numberRe  = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// CheckPasswordStrength grades pass. An empty password has level 0.
func CheckPasswordStrength(pass string) Strength {
	if pass == "" {
		return Strength{}
	}

	req := Requirements{
		Length:    len(pass) >= 8,
		Uppercase: upperRe.MatchString(pass),
		Lowercase: lowerRe.MatchString(pass),
		Number:    numberRe.MatchString(pass),
		Special:   specialRe.MatchString(pass),
	}

	score := 0
	if req.Length {
		score++
	}
	if req.Uppercase && req.Lowercase {
		score++
	}
	if req.Number {
		score++
	}
	if req.Special {
		score++
	}

	switch {
	case score <= 1:
		return Strength{Level: 1, Label: "Débil", Requirements: req}
	case score <= 3:
		return Strength{Level: 2, Label: "Media", Requirements: req}
	default:
		return Strength{Level: 3, Label: "Fuerte", Requirements: req}
	}
}
