package digest

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/NamanBalaji/modsync/internal/logger"
)

const (
	SHA256 = "sha256"
	MD5    = "md5"
)

var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Verifier computes content digests of local files.
type Verifier struct {
	algorithm string
	newHash   func() hash.Hash
}

// New returns a Verifier for the named algorithm. An empty name selects SHA256.
func New(algorithm string) (*Verifier, error) {
	switch strings.ToLower(algorithm) {
	case "", SHA256:
		return &Verifier{algorithm: SHA256, newHash: sha256.New}, nil
	case MD5:
		return &Verifier{algorithm: MD5, newHash: md5.New}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
}

// NewWithHash builds a Verifier around any hash constructor.
func NewWithHash(name string, newHash func() hash.Hash) *Verifier {
	return &Verifier{algorithm: name, newHash: newHash}
}

// Algorithm returns the configured algorithm name.
func (v *Verifier) Algorithm() string {
	return v.algorithm
}

// DigestOf streams the file at path through the hash and returns the
// lowercase hex digest.
func (v *Verifier) DigestOf(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}

	defer func() {
		if err := f.Close(); err != nil {
			logger.Errorf("Failed to close %s after hashing: %v", path, err)
		}
	}()

	return v.DigestReader(f)
}

// DigestReader hashes everything read from r.
func (v *Verifier) DigestReader(r io.Reader) (string, error) {
	h := v.newHash()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsValid reports whether the file at path exists and hashes to expected.
// Missing or unreadable files are simply not valid.
func (v *Verifier) IsValid(path, expected string) bool {
	got, err := v.DigestOf(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Debugf("Could not hash %s: %v", path, err)
		}

		return false
	}

	return Equal(got, expected)
}

// Equal compares two hex digests ignoring case and surrounding whitespace.
func Equal(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	return a != "" && strings.EqualFold(a, b)
}
