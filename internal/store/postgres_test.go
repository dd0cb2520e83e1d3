package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"legal-assistant/internal/embeddings"
)

func TestVectorToString(t *testing.T) {
	assert.Equal(t, "[]", vectorToString(nil))
	assert.Equal(t, "[0.5,-1,0.25]", vectorToString(embeddings.Vector{0.5, -1, 0.25}))
}

func TestNewPostgresRejectsBadDimension(t *testing.T) {
	_, err := NewPostgres("postgres://unused", 0)
	assert.Error(t, err)
}
