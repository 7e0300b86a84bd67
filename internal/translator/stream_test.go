package translator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func deltas(t *testing.T, chunks []Chunk) []gjson.Result {
	t.Helper()
	out := make([]gjson.Result, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, gjson.ParseBytes(c.JSON))
	}
	return out
}

func TestStreamFirstChunkCarriesRole(t *testing.T) {
	s := NewStreamState("gpt-4")
	chunks := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi"}]}}]}`))
	require.Len(t, chunks, 2)

	events := deltas(t, chunks)
	require.Equal(t, "assistant", events[0].Get("choices.0.delta.role").String())
	require.False(t, events[0].Get("choices.0.delta.content").Exists())
	require.Equal(t, "Hi", events[1].Get("choices.0.delta.content").String())
}

func TestStreamRoleEmittedOnce(t *testing.T) {
	s := NewStreamState("m")
	first := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"text":"a"}]}}]}`))
	second := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"text":"b"}]}}]}`))
	require.Len(t, first, 2)
	require.Len(t, second, 1)
	require.False(t, gjson.ParseBytes(second[0].JSON).Get("choices.0.delta.role").Exists())
}

func TestStreamStableIDAcrossChunks(t *testing.T) {
	s := NewStreamState("m")
	first := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"text":"a"}]}}]}`))
	second := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"text":"b"}]}}]}`))

	id := gjson.ParseBytes(first[0].JSON).Get("id").String()
	require.NotEmpty(t, id)
	for _, c := range append(first, second...) {
		require.Equal(t, id, gjson.ParseBytes(c.JSON).Get("id").String())
	}
}

func TestStreamContentConcatenation(t *testing.T) {
	s := NewStreamState("m")
	parts := []string{"The ", "quick ", "fox"}
	var collected []string
	for _, p := range parts {
		b, _ := json.Marshal(p)
		chunks := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"text":` + string(b) + `}]}}]}`))
		for _, c := range chunks {
			if d := gjson.ParseBytes(c.JSON).Get("choices.0.delta.content"); d.Exists() {
				collected = append(collected, d.String())
			}
		}
	}
	require.Equal(t, "The quick fox", ConcatContent(collected))
}

func TestStreamFinishChunk(t *testing.T) {
	s := NewStreamState("m")
	chunks := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"text":"done"}]},"finishReason":"STOP"}]}`))
	require.Len(t, chunks, 3) // role, content, finish

	last := gjson.ParseBytes(chunks[2].JSON)
	require.Equal(t, "stop", last.Get("choices.0.finish_reason").String())
	require.Equal(t, 0, len(last.Get("choices.0.delta").Map()))
}

func TestStreamToolCallDelta(t *testing.T) {
	s := NewStreamState("m")
	chunks := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"functionCall":{"name":"get_weather","args":{"city":"SF"}}}]},"finishReason":"STOP"}]}`))
	require.Len(t, chunks, 3)

	tc := gjson.ParseBytes(chunks[1].JSON).Get("choices.0.delta.tool_calls.0")
	require.Equal(t, int64(0), tc.Get("index").Int())
	require.NotEmpty(t, tc.Get("id").String())
	require.Equal(t, "function", tc.Get("type").String())
	require.Equal(t, "get_weather", tc.Get("function.name").String())

	// The argument fragment is itself a complete JSON object.
	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(tc.Get("function.arguments").String()), &args))
	require.Equal(t, "SF", args["city"])
}

func TestStreamSecondToolCallGetsNextIndex(t *testing.T) {
	s := NewStreamState("m")
	s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"functionCall":{"name":"a","args":{}}}]}}]}`))
	chunks := s.Translate([]byte(`{"candidates":[{"content":{"parts":[{"functionCall":{"name":"b","args":{}}}]}}]}`))

	tc := gjson.ParseBytes(chunks[0].JSON).Get("choices.0.delta.tool_calls.0")
	require.Equal(t, int64(1), tc.Get("index").Int())
	require.Equal(t, "b", tc.Get("function.name").String())
}

func TestStreamEmptyKeepaliveProducesNothingAfterRole(t *testing.T) {
	s := NewStreamState("m")
	first := s.Translate([]byte(`{}`))
	require.Len(t, first, 1) // role marker only
	second := s.Translate([]byte(`{}`))
	require.Empty(t, second)
}
