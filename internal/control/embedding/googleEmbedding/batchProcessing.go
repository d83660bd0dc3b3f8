package googleEmbedding

import (
	"strings"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		// Newlines degrade embedding quality for some providers, flatten them
		safe := strings.ReplaceAll(chunk, "\n", " ")
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: safe}},
		})
	}
	return contentsToSend
}

func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted {
			log.Error("Rate limit hit! ", "error", err)
			return true
		}
	}
	return false
}
