// Package daily picks the seed word of the day, so every game created with the
// "daily" seed on the same UTC date starts from the same board.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// SeedWord returns the candidate for date, or "" when there are no candidates.
func SeedWord(date time.Time, salt string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[WordIndex(date, salt, len(candidates))]
}
