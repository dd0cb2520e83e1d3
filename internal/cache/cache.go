package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache stores generated answers so repeated questions skip the LLM.
type Cache interface {
	// GetAnswer retrieves a cached answer by key.
	// Returns nil if not found
	GetAnswer(ctx context.Context, key string) (*Answer, error)

	// SetAnswer stores an answer with TTL
	SetAnswer(ctx context.Context, key string, answer *Answer, ttl time.Duration) error

	// InvalidateCase removes every cached answer for a case
	InvalidateCase(ctx context.Context, caseName string) error

	// Close closes the cache connection
	Close() error
}

// Answer represents a cached ask response.
type Answer struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// Key derives the cache key for a question asked against a case. Keys of the
// same case share a prefix so the case can be invalidated as a whole.
func Key(caseName, query string) string {
	return casePrefix(caseName) + digest(strings.ToLower(strings.Join(strings.Fields(query), " ")))
}

func casePrefix(caseName string) string {
	return digest(caseName)[:16] + ":"
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
