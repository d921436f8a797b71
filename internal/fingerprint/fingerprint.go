// Package fingerprint derives the content address of a revision.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

var ErrInvalidInput = errors.New("fingerprint requires a timestamp and a non-empty body")

// Compute hashes the second-granularity timestamp followed by the raw body.
// Two revisions submitted in the same second with the same body collide.
func Compute(timestamp time.Time, body string) (string, error) {
	if timestamp.IsZero() || body == "" {
		return "", ErrInvalidInput
	}
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(timestamp.Unix(), 10)))
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil)), nil
}
