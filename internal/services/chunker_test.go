package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortText(t *testing.T) {
	chunks := NewTextChunker().ChunkText("Horario: lunes a sábado.\n\nSueldo básico más comisiones.", 1000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Horario: lunes a sábado.\n\nSueldo básico más comisiones.", chunks[0])
}

func TestChunkTextRespectsSizeAndOverlap(t *testing.T) {
	var paras []string
	for i := 0; i < 30; i++ {
		paras = append(paras, strings.Repeat("ñ", 90))
	}
	text := strings.Join(paras, "\n\n")

	chunks := NewTextChunker().ChunkText(text, 300, 50)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 300)
	}
	for i := 1; i < len(chunks); i++ {
		assert.True(t, strings.HasPrefix(chunks[i], lastRunes(chunks[i-1], 50)))
	}
}

func TestChunkTextSplitsLongParagraphBySentence(t *testing.T) {
	sentence := strings.Repeat("a", 40) + "."
	para := strings.Repeat(sentence+" ", 10)

	chunks := NewTextChunker().ChunkText(para, 100, 0)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
		assert.True(t, strings.HasSuffix(c, "."))
	}
}

func TestSplitIntoSentencesKeepsPunctuation(t *testing.T) {
	assert.Equal(t, []string{"Hola.", "¿Cómo estás?", "Bien"}, splitIntoSentences("Hola. ¿Cómo estás? Bien"))
}
