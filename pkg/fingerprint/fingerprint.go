// Package fingerprint derives stable names and digests for staged documents and batches.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Fingerprint errors.
var (
	ErrEmptyLocator = errors.New("locator is empty")
	ErrHashMismatch = errors.New("hash mismatch")
)

// LocatorName returns the staging file name for a remote locator: the
// SHA-256 of the full locator in hex followed by ext. Distinct locators
// never share a name, the same locator always maps to the same one.
func LocatorName(locator, ext string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", ErrEmptyLocator
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ContentHash([]byte(locator)) + strings.ToLower(ext), nil
}

// ContentHash computes the hex SHA-256 of data.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)

	return hex.EncodeToString(hash[:])
}

// FileHash computes the hex SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks that the file at path still has the expected digest.
func Verify(path, want string) error {
	got, err := FileHash(path)
	if err != nil {
		return err
	}

	if !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, want, got)
	}

	return nil
}
