package translator

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// StreamState tracks the per-connection accumulator a streaming
// translation needs across chunks: the stable chunk id and created
// timestamp shared by every event of the stream, whether the role
// marker has been emitted, and the next tool-call index.
type StreamState struct {
	Model string

	id        string
	created   int64
	roleSent  bool
	toolCalls int
}

// NewStreamState builds a fresh per-connection translator state.
func NewStreamState(model string) *StreamState {
	return &StreamState{
		Model:   model,
		id:      "chatcmpl-" + uuid.NewString(),
		created: time.Now().Unix(),
	}
}

// Chunk is one OpenAI SSE "data:" payload this translator emits for one
// native chunk. A single native chunk may translate to zero OpenAI
// chunks (an empty keepalive after the first call) or several: the
// role-only chunk on the very first call, one delta per content part,
// and a finish chunk when the native chunk carries a finishReason.
type Chunk struct {
	JSON []byte
}

// Translate converts one native streaming chunk (already unwrapped from
// its SSE framing by upstream.ChunkIterator) into zero or more OpenAI
// chat.completion.chunk payloads.
func (s *StreamState) Translate(nativeChunk []byte) []Chunk {
	result := gjson.ParseBytes(nativeChunk)
	var out []Chunk

	if !s.roleSent {
		out = append(out, s.emitDelta(map[string]any{"role": "assistant"}, nil))
		s.roleSent = true
	}

	candidates := result.Get("candidates")
	if !candidates.Exists() {
		return out
	}

	// Only the first candidate drives the single-choice stream.
	candidate := candidates.Array()[0]

	for _, part := range candidate.Get("content.parts").Array() {
		if text := part.Get("text"); text.Exists() && text.String() != "" {
			out = append(out, s.emitDelta(map[string]any{"content": text.String()}, nil))
			continue
		}
		if fc := part.Get("functionCall"); fc.Exists() {
			out = append(out, s.emitToolCallDelta(fc))
		}
	}

	if fr := candidate.Get("finishReason"); fr.Exists() {
		finish := mapFinishReason(fr.String())
		out = append(out, s.emitDelta(map[string]any{}, &finish))
	}

	return out
}

// emitToolCallDelta renders a native functionCall part as an OpenAI
// tool_calls delta. The upstream delivers each call's args whole rather
// than incrementally, so every functionCall part opens a fresh
// tool-call index carrying id, type, name, and the full serialized args
// as its single arguments fragment; a one-fragment sequence trivially
// concatenates to a valid JSON object at stream end.
func (s *StreamState) emitToolCallDelta(fc gjson.Result) Chunk {
	index := s.toolCalls
	s.toolCalls++

	argsJSON := "{}"
	if args := fc.Get("args"); args.Exists() {
		argsJSON = args.Raw
	}

	tc := map[string]any{
		"index": index,
		"id":    "call_" + uuid.NewString(),
		"type":  "function",
		"function": map[string]any{
			"name":      fc.Get("name").String(),
			"arguments": argsJSON,
		},
	}
	return s.emitDelta(map[string]any{"tool_calls": []any{tc}}, nil)
}

func (s *StreamState) emitDelta(delta map[string]any, finishReason *string) Chunk {
	choice := map[string]any{"index": 0, "delta": delta}
	if finishReason != nil {
		choice["finish_reason"] = *finishReason
	} else {
		choice["finish_reason"] = nil
	}
	evt := map[string]any{
		"id":      s.id,
		"object":  "chat.completion.chunk",
		"created": s.created,
		"model":   s.Model,
		"choices": []any{choice},
	}
	b, _ := json.Marshal(evt)
	return Chunk{JSON: b}
}

// ConcatContent reconstructs the content string a sequence of text
// deltas carries, in order. Used to verify that streamed fragments
// reassemble into the equivalent non-streaming message content.
func ConcatContent(deltas []string) string {
	var b strings.Builder
	for _, d := range deltas {
		b.WriteString(d)
	}
	return b.String()
}
