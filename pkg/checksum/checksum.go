package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const chunkSize = 4096

// SumFile returns the lowercase hex SHA-256 of the file at path, reading it
// in fixed-size chunks.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether the file's digest equals expectedHex. The
// comparison is exact: an uppercase or padded expected value never matches.
func Verify(path, expectedHex string) (bool, error) {
	actual, err := SumFile(path)
	if err != nil {
		return false, err
	}
	return actual == expectedHex, nil
}
