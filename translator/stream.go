package translator

import (
	"encoding/json"
	"strings"
)

const doneSentinel = "[DONE]"

// streamChunk is one SSE frame of an OpenAI-compatible streaming completion.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// streamDecoder incrementally parses SSE framed completion data. A chunk may
// end mid-line, so the trailing incomplete line is buffered and finished by
// the next Feed call.
type streamDecoder struct {
	buffer string
}

// Feed consumes one raw chunk and returns the text fragments of every
// complete frame it contained. Unparsable lines are skipped.
func (d *streamDecoder) Feed(data []byte) []string {
	d.buffer += string(data)
	lines := strings.Split(d.buffer, "\n")
	d.buffer = lines[len(lines)-1]

	fragments := make([]string, 0)
	for _, line := range lines[:len(lines)-1] {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if payload == doneSentinel {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			fragments = append(fragments, chunk.Choices[0].Delta.Content)
		}
	}
	return fragments
}
