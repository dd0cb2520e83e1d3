package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyNormalizesQuery(t *testing.T) {
	a := Key("Smith v. Jones", "What is  consideration?")
	b := Key("Smith v. Jones", " what is consideration? ")
	assert.Equal(t, a, b)
}

func TestKeySharesCasePrefix(t *testing.T) {
	a := Key("Smith v. Jones", "first question")
	b := Key("Smith v. Jones", "second question")
	other := Key("State v. Rao", "first question")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(b, casePrefix("Smith v. Jones")))
	assert.True(t, strings.HasPrefix(a, casePrefix("Smith v. Jones")))
	assert.False(t, strings.HasPrefix(other, casePrefix("Smith v. Jones")))
}

func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	result, err := cache.GetAnswer(ctx, "test-key")
	assert.NoError(t, err)
	assert.Nil(t, result)

	err = cache.SetAnswer(ctx, "test-key", &Answer{Query: "q", Answer: "a"}, time.Hour)
	assert.NoError(t, err)

	// Still a miss: nothing is stored.
	result, err = cache.GetAnswer(ctx, "test-key")
	assert.NoError(t, err)
	assert.Nil(t, result)

	assert.NoError(t, cache.InvalidateCase(ctx, "Smith v. Jones"))
	assert.NoError(t, cache.Close())
}
