package chunk

import (
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
)

// Split cuts text into fixed-size windows that overlap by exactly overlap
// characters. Misconfiguration never fails the pipeline: a non-positive
// size yields one whole-text chunk, an overlap at or above size is clamped
// to size/2, a negative overlap to 0. Empty text yields no chunks.
func Split(text string, size int, overlap int) []commonModels.TextChunk {
	if len(text) == 0 {
		return nil
	}

	if size <= 0 {
		return []commonModels.TextChunk{{Index: 0, StartOffset: 0, Text: text}}
	}
	if overlap >= size {
		overlap = size / 2
	}
	if overlap < 0 {
		overlap = 0
	}

	step := size - overlap
	var chunks []commonModels.TextChunk

	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, commonModels.TextChunk{
			Index:       len(chunks),
			StartOffset: start,
			Text:        text[start:end],
		})

		//a clamped overlap keeps step positive for any size >= 1, but guard
		//anyway so a degenerate step can never spin forever
		if step <= 0 {
			break
		}
	}

	return chunks
}
