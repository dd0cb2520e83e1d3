package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextRespectsSize(t *testing.T) {
	text := strings.Repeat("The appellant contends that the contract is void. ", 100)

	chunks, err := ChunkText(text, Options{ChunkSize: 200, Overlap: 40})

	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 200)
		assert.Equal(t, len(strings.Fields(c.Text)), c.TokenCount)
	}
}

func TestChunkTextShortInputIsSingleChunk(t *testing.T) {
	chunks, err := ChunkText("Smith v. Jones, 1998.", Options{ChunkSize: 1000, Overlap: 200})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Smith v. Jones, 1998.", chunks[0].Text)
	assert.Equal(t, 4, chunks[0].TokenCount)
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunks, err := ChunkText("  \n\n ", Options{ChunkSize: 10})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkTextDefaults(t *testing.T) {
	text := strings.Repeat("word ", 1000)

	chunks, err := ChunkText(text, Options{Overlap: -5})

	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 1000)
	}
}
