package pdftext

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("judgment.PDF"))
	assert.True(t, IsSupported("notes.txt"))
	assert.False(t, IsSupported("brief.docx"))
	assert.False(t, IsSupported("noext"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.pdf"))
	assert.Equal(t, "text/plain", ContentType("a.TXT"))
	assert.Equal(t, "", ContentType("a.doc"))
}

func TestExtractPlainText(t *testing.T) {
	text, err := Extract("notes.txt", []byte("The respondent filed late."))
	require.NoError(t, err)
	assert.Equal(t, "The respondent filed late.", text)
}

func TestExtractPlainTextRepairsEncoding(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"latin-1 byte", []byte("Caf\xe9 owner sued"), "Caf\uFFFD owner sued"},
		{"truncated sequence", []byte("clause \xe2\x82"), "clause \uFFFD"},
		{"nul byte", []byte("sec\x00tion 420"), "section 420"},
		{"valid unicode kept", []byte("§ 420 – cheating"), "§ 420 – cheating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Extract("notes.txt", tt.in)
			require.NoError(t, err)
			assert.True(t, utf8.ValidString(text))
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestExtractInvalidPDF(t *testing.T) {
	_, err := Extract("broken.pdf", []byte("not a pdf"))
	assert.Error(t, err)
}
