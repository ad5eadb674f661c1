package services

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

var alphabetSize = big.NewInt(int64(len(domain.ShortCodeAlphabet)))

// generateShortCode returns a random candidate code of the fixed length,
// each character sampled uniformly from the base62 alphabet. It knows
// nothing about existing records; uniqueness is settled at insert time.
func generateShortCode() (string, error) {
	var b strings.Builder
	b.Grow(domain.ShortCodeLength)
	for i := 0; i < domain.ShortCodeLength; i++ {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b.WriteByte(domain.ShortCodeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// validShortCode reports whether s could have been produced by
// generateShortCode.
func validShortCode(s string) bool {
	if len(s) != domain.ShortCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(domain.ShortCodeAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
