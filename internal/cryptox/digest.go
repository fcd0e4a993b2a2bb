// Package cryptox provides the one-way password digests used by the
// credential store.
//
// Every digester is deterministic and returns a lowercase hex string of
// fixed length, so stored values can be compared with Equal.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmSHA256   = "sha256"
)

// DigestHexLen is the length of every digest produced by this package.
const DigestHexLen = 64

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// ErrWeakPepper is returned when an argon2id digester is configured with a
// pepper too short to act as a salt.
var ErrWeakPepper = errors.New("pepper must be at least 8 bytes")

// Digester turns a plaintext password into its stored form.
type Digester interface {
	Digest(password string) string
	Algorithm() string
}

// Argon2idDigester derives a 32-byte argon2id key using a deployment-wide
// pepper as the salt. Accounts carry no per-user salt, so the pepper is what
// keeps digests from being portable between deployments.
type Argon2idDigester struct {
	salt []byte
}

func NewArgon2idDigester(pepper string) (*Argon2idDigester, error) {
	if len(pepper) < 8 {
		return nil, ErrWeakPepper
	}
	return &Argon2idDigester{salt: []byte(pepper)}, nil
}

func (d *Argon2idDigester) Digest(password string) string {
	key := argon2.IDKey([]byte(password), d.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}

func (d *Argon2idDigester) Algorithm() string { return AlgorithmArgon2id }

// SHA256Digester is an unsalted SHA-256 hex digest. It exists so databases
// created by the earlier Python deployment keep working.
type SHA256Digester struct{}

func (SHA256Digester) Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (SHA256Digester) Algorithm() string { return AlgorithmSHA256 }

// NewDigester picks a digester by algorithm name.
func NewDigester(algorithm, pepper string) (Digester, error) {
	switch algorithm {
	case AlgorithmArgon2id, "":
		return NewArgon2idDigester(pepper)
	case AlgorithmSHA256:
		return SHA256Digester{}, nil
	default:
		return nil, fmt.Errorf("unknown digest algorithm %q", algorithm)
	}
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
