// Package hashing computes content digests of video files.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"

	vaerrors "github.com/five82/vidauth/internal/errors"
)

// BlockSize is the read size used when streaming a file through the hasher.
const BlockSize = 64 * 1024

// Algorithm names a supported 256-bit digest.
type Algorithm string

const (
	// SHA256 is the default algorithm.
	SHA256 Algorithm = "sha256"
	// BLAKE3 uses the 32-byte BLAKE3 output.
	BLAKE3 Algorithm = "blake3"
)

// ParseAlgorithm parses an algorithm name. An empty name selects SHA256.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sha256", "sha-256":
		return SHA256, nil
	case "blake3":
		return BLAKE3, nil
	default:
		return "", vaerrors.NewConfigError(fmt.Sprintf("unsupported hash algorithm %q", s))
	}
}

func (a Algorithm) newHash() hash.Hash {
	if a == BLAKE3 {
		return blake3.New()
	}
	return sha256.New()
}

// Digest is a lowercase hexadecimal content digest.
type Digest string

// Reader hashes everything readable from r in BlockSize reads.
func Reader(r io.Reader, algo Algorithm) (Digest, error) {
	h := algo.newHash()
	buf := make([]byte, BlockSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// File hashes the contents of the file at path. The path itself never
// contributes to the digest.
func File(path string, algo Algorithm) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", vaerrors.NewIOError("failed to open file for hashing", err)
	}
	defer f.Close()

	d, err := Reader(f, algo)
	if err != nil {
		return "", vaerrors.NewIOError(fmt.Sprintf("failed to read %s", path), err)
	}
	return d, nil
}

// Hasher hashes files with a fixed algorithm.
type Hasher struct {
	Algorithm Algorithm
}

// HashFile hashes the file at path with the configured algorithm.
func (h Hasher) HashFile(path string) (Digest, error) {
	return File(path, h.Algorithm)
}
