package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_CoverageAndOffsets(t *testing.T) {
	text := strings.Repeat("abcdefghij", 50) //500 chars
	size, overlap := 120, 20

	chunks := Split(text, size, overlap)
	require.NotEmpty(t, chunks)

	//de-overlapped concatenation reconstructs the input
	var rebuilt strings.Builder
	for i, c := range chunks {
		if i == 0 {
			rebuilt.WriteString(c.Text)
			continue
		}
		rebuilt.WriteString(c.Text[overlap:])
	}
	assert.Equal(t, text, rebuilt.String())

	last := chunks[len(chunks)-1]
	assert.Equal(t, len(text), last.StartOffset+len(last.Text), "last chunk must end at len(text)")

	step := size - overlap
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, i*step, c.StartOffset)
	}
}

func TestSplit_OverlapInvariant(t *testing.T) {
	text := strings.Repeat("x1y2z3", 200)
	size, overlap := 100, 30

	chunks := Split(text, size, overlap)
	require.Greater(t, len(chunks), 2)

	for i := 0; i < len(chunks)-1; i++ {
		if len(chunks[i+1].Text) < overlap {
			continue //final stub
		}
		tail := chunks[i].Text[len(chunks[i].Text)-overlap:]
		head := chunks[i+1].Text[:overlap]
		assert.Equal(t, tail, head, "chunks %d/%d must share %d chars", i, i+1, overlap)
	}
}

func TestSplit_ClampRules(t *testing.T) {
	text := strings.Repeat("a", 1000)

	t.Run("overlap >= size clamps to size/2", func(t *testing.T) {
		for _, overlap := range []int{100, 150, 5000} {
			chunks := Split(text, 100, overlap)
			require.Greater(t, len(chunks), 1)
			//effective step must be size - size/2 = 50
			assert.Equal(t, 50, chunks[1].StartOffset-chunks[0].StartOffset)
		}
	})

	t.Run("negative overlap clamps to zero", func(t *testing.T) {
		chunks := Split(text, 100, -7)
		require.Equal(t, 10, len(chunks))
		assert.Equal(t, 100, chunks[1].StartOffset)
	})

	t.Run("non-positive size falls back to one chunk", func(t *testing.T) {
		chunks := Split(text, 0, 10)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0].Text)
		assert.Equal(t, 0, chunks[0].StartOffset)
	})
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Nil(t, Split("", 100, 10))
}

func TestSplit_ShortText(t *testing.T) {
	chunks := Split("short", 2000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Text)
}
