package llmclient

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/marmotcli/marmot/src/aisdk"
)

// sseStream reads an OpenAI-style server-sent-event body and yields the text
// fragments carried in each chunk's delta. Chunks without content (role
// preludes, finish markers) are skipped; malformed event payloads are
// ignored.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newSSEStream(body io.ReadCloser) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{body: body, scanner: scanner}
}

// Next returns the next non-empty text fragment, or io.EOF once the stream
// signals completion.
func (s *sseStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if data == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk aisdk.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *sseStream) Close() error {
	s.done = true
	return s.body.Close()
}
