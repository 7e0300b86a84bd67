package translator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestToNativeRequestFoldsMessages(t *testing.T) {
	req := []byte(`{
		"model": "gpt-4",
		"messages": [
			{"role": "system", "content": "be brief"},
			{"role": "system", "content": "be kind"},
			{"role": "user", "content": "hello"},
			{"role": "user", "content": "world"},
			{"role": "assistant", "content": "hi there"}
		]
	}`)
	native := ToNativeRequest(req)

	sys := gjson.GetBytes(native, "systemInstruction.parts.0.text").String()
	require.Equal(t, "be brief\nbe kind", sys)

	contents := gjson.GetBytes(native, "contents").Array()
	require.Len(t, contents, 2)
	require.Equal(t, "user", contents[0].Get("role").String())
	// Two consecutive user messages fold into one entry with two parts.
	parts := contents[0].Get("parts").Array()
	require.Len(t, parts, 2)
	require.Equal(t, "hello", parts[0].Get("text").String())
	require.Equal(t, "world", parts[1].Get("text").String())
	require.Equal(t, "model", contents[1].Get("role").String())
	require.Equal(t, "hi there", contents[1].Get("parts.0.text").String())
}

func TestToNativeRequestToolCallsAndResults(t *testing.T) {
	req := []byte(`{
		"messages": [
			{"role": "user", "content": "weather?"},
			{"role": "assistant", "content": "", "tool_calls": [
				{"id": "call_1", "type": "function", "function": {"name": "get_weather", "arguments": "{\"city\":\"SF\"}"}}
			]},
			{"role": "tool", "tool_call_id": "call_1", "name": "get_weather", "content": "{\"temp\": 18}"}
		]
	}`)
	native := ToNativeRequest(req)

	contents := gjson.GetBytes(native, "contents").Array()
	require.Len(t, contents, 3)

	fc := contents[1].Get("parts.0.functionCall")
	require.Equal(t, "get_weather", fc.Get("name").String())
	require.Equal(t, "SF", fc.Get("args.city").String())

	fr := contents[2].Get("parts.0.functionResponse")
	require.Equal(t, "user", contents[2].Get("role").String())
	require.Equal(t, "get_weather", fr.Get("name").String())
	require.Equal(t, int64(18), fr.Get("response.temp").Int())
}

func TestToNativeRequestInvalidToolArgsPassThrough(t *testing.T) {
	req := []byte(`{
		"messages": [
			{"role": "assistant", "tool_calls": [
				{"type": "function", "function": {"name": "f", "arguments": "not json"}}
			]}
		]
	}`)
	native := ToNativeRequest(req)
	args := gjson.GetBytes(native, "contents.0.parts.0.functionCall.args")
	require.Equal(t, "not json", args.String())
}

func TestToNativeRequestToolDeclarations(t *testing.T) {
	req := []byte(`{
		"messages": [{"role": "user", "content": "x"}],
		"tools": [
			{"type": "function", "function": {"name": "get_weather", "description": "weather lookup",
				"parameters": {"type": "object", "properties": {"city": {"type": "string"}}}}}
		],
		"tool_choice": {"type": "function", "function": {"name": "get_weather"}}
	}`)
	native := ToNativeRequest(req)

	decl := gjson.GetBytes(native, "tools.0.functionDeclarations.0")
	require.Equal(t, "get_weather", decl.Get("name").String())
	require.Equal(t, "weather lookup", decl.Get("description").String())
	require.Equal(t, "string", decl.Get("parameters.properties.city.type").String())

	cfg := gjson.GetBytes(native, "toolConfig.functionCallingConfig")
	require.Equal(t, "ANY", cfg.Get("mode").String())
	require.Equal(t, "get_weather", cfg.Get("allowedFunctionNames.0").String())
}

func TestToNativeRequestToolChoiceModes(t *testing.T) {
	for choice, mode := range map[string]string{"none": "NONE", "auto": "AUTO", "required": "ANY"} {
		req := []byte(`{"messages":[{"role":"user","content":"x"}],"tool_choice":"` + choice + `"}`)
		native := ToNativeRequest(req)
		require.Equal(t, mode, gjson.GetBytes(native, "toolConfig.functionCallingConfig.mode").String(), choice)
	}
}

func TestToNativeRequestGenerationConfig(t *testing.T) {
	req := []byte(`{
		"messages": [{"role": "user", "content": "x"}],
		"temperature": 0.5,
		"top_p": 0.9,
		"top_k": 40,
		"max_tokens": 256,
		"stop": ["END", "STOP"],
		"response_format": {"type": "json_object"}
	}`)
	native := ToNativeRequest(req)

	cfg := gjson.GetBytes(native, "generationConfig")
	require.Equal(t, 0.5, cfg.Get("temperature").Float())
	require.Equal(t, 0.9, cfg.Get("topP").Float())
	require.Equal(t, int64(40), cfg.Get("topK").Int())
	require.Equal(t, int64(256), cfg.Get("maxOutputTokens").Int())
	require.Equal(t, "END", cfg.Get("stopSequences.0").String())
	require.Equal(t, "application/json", cfg.Get("responseMimeType").String())
}

func TestToOpenAIResponseText(t *testing.T) {
	native := []byte(`{
		"candidates": [{"content":{"parts":[{"text":"Hello, "},{"text":"world"}]},"finishReason":"STOP"}],
		"usageMetadata": {"promptTokenCount": 5, "candidatesTokenCount": 3}
	}`)
	out := ToOpenAIResponse(native, "gpt-3.5-turbo", 1700000000)

	require.Equal(t, "chat.completion", gjson.GetBytes(out, "object").String())
	require.Equal(t, "gpt-3.5-turbo", gjson.GetBytes(out, "model").String())
	require.True(t, gjson.GetBytes(out, "id").String() != "")
	require.Equal(t, "Hello, world", gjson.GetBytes(out, "choices.0.message.content").String())
	require.Equal(t, "stop", gjson.GetBytes(out, "choices.0.finish_reason").String())
	require.Equal(t, int64(5), gjson.GetBytes(out, "usage.prompt_tokens").Int())
	require.Equal(t, int64(3), gjson.GetBytes(out, "usage.completion_tokens").Int())
	require.Equal(t, int64(8), gjson.GetBytes(out, "usage.total_tokens").Int())
}

func TestToOpenAIResponseToolCall(t *testing.T) {
	native := []byte(`{
		"candidates": [{"content":{"parts":[{"functionCall":{"name":"get_weather","args":{"city":"SF"}}}]},"finishReason":"STOP"}]
	}`)
	out := ToOpenAIResponse(native, "gpt-4", 0)

	tc := gjson.GetBytes(out, "choices.0.message.tool_calls.0")
	require.NotEmpty(t, tc.Get("id").String())
	require.Equal(t, "function", tc.Get("type").String())
	require.Equal(t, "get_weather", tc.Get("function.name").String())

	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(tc.Get("function.arguments").String()), &args))
	require.Equal(t, "SF", args["city"])

	require.Equal(t, "tool_calls", gjson.GetBytes(out, "choices.0.finish_reason").String())
}

func TestToOpenAIResponseFinishReasons(t *testing.T) {
	for native, want := range map[string]string{
		"STOP":       "stop",
		"MAX_TOKENS": "length",
		"SAFETY":     "content_filter",
		"RECITATION": "content_filter",
		"BLOCKLIST":  "content_filter",
	} {
		body := []byte(`{"candidates":[{"content":{"parts":[{"text":"x"}]},"finishReason":"` + native + `"}]}`)
		out := ToOpenAIResponse(body, "m", 0)
		require.Equal(t, want, gjson.GetBytes(out, "choices.0.finish_reason").String(), native)
	}
}

func TestToOpenAIResponsePromptBlocked(t *testing.T) {
	native := []byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`)
	out := ToOpenAIResponse(native, "m", 0)
	require.Equal(t, "content_filter", gjson.GetBytes(out, "choices.0.finish_reason").String())
	require.Equal(t, "", gjson.GetBytes(out, "choices.0.message.content").String())
}

func TestToOpenAIResponseMissingUsageDefaultsZero(t *testing.T) {
	native := []byte(`{"candidates":[{"content":{"parts":[{"text":"x"}]},"finishReason":"STOP"}]}`)
	out := ToOpenAIResponse(native, "m", 0)
	require.Equal(t, int64(0), gjson.GetBytes(out, "usage.total_tokens").Int())
}

// Request translation preserves all semantically relevant fields when
// the response is mapped back: text content survives the round trip.
func TestRoundTripPreservesContent(t *testing.T) {
	req := []byte(`{
		"model": "gpt-4",
		"messages": [{"role": "user", "content": "Echo this"}]
	}`)
	native := ToNativeRequest(req)
	sent := gjson.GetBytes(native, "contents.0.parts.0.text").String()
	require.Equal(t, "Echo this", sent)

	nativeResp := []byte(`{"candidates":[{"content":{"parts":[{"text":"` + sent + `"}]},"finishReason":"STOP"}]}`)
	out := ToOpenAIResponse(nativeResp, "gpt-4", 0)
	require.Equal(t, "Echo this", gjson.GetBytes(out, "choices.0.message.content").String())
}

func TestModelMappingResolve(t *testing.T) {
	m := ModelMapping{
		Mapping:      map[string]string{"gpt-4": "gemini-2.5-pro", "gpt-3.5-turbo": "gemini-2.5-flash"},
		DefaultModel: "gemini-2.5-pro",
	}
	require.Equal(t, "gemini-2.5-pro", m.Resolve("gpt-4"))
	require.Equal(t, "gemini-2.5-flash", m.Resolve("gpt-3.5-turbo"))
	require.Equal(t, "gemini-2.0-flash", m.Resolve("gemini-2.0-flash"))
	require.Equal(t, "gemini-2.5-pro", m.Resolve(""))
}
