package translator

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// ToOpenAIResponse converts a non-streaming native response into an
// OpenAI chat.completion artifact. now is the emit timestamp (unix
// seconds) and model echoes the requested (not resolved) model name.
func ToOpenAIResponse(nativeBody []byte, model string, now int64) []byte {
	result := gjson.ParseBytes(nativeBody)

	var choices []map[string]any
	for idx, candidate := range result.Get("candidates").Array() {
		message, finishReason := candidateToMessage(candidate)
		choices = append(choices, map[string]any{
			"index":         idx,
			"message":       message,
			"finish_reason": finishReason,
		})
	}

	// A prompt-level safety block arrives with no candidates at all;
	// surface it as a normal completion with empty content and
	// finish_reason content_filter rather than an error.
	if len(choices) == 0 && result.Get("promptFeedback.blockReason").Exists() {
		choices = append(choices, map[string]any{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": ""},
			"finish_reason": "content_filter",
		})
	}

	promptTokens := result.Get("usageMetadata.promptTokenCount").Int()
	completionTokens := result.Get("usageMetadata.candidatesTokenCount").Int()

	out := map[string]any{
		"id":      "chatcmpl-" + uuid.NewString(),
		"object":  "chat.completion",
		"created": now,
		"model":   model,
		"choices": choices,
		"usage": map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      promptTokens + completionTokens,
		},
	}
	b, _ := json.Marshal(out)
	return b
}

// candidateToMessage walks one native candidate's content.parts in
// order: text parts concatenate into message.content, functionCall
// parts become message.tool_calls entries with freshly generated ids.
// Any functionCall part forces finish_reason to tool_calls.
func candidateToMessage(candidate gjson.Result) (map[string]any, string) {
	var text strings.Builder
	var toolCalls []map[string]any

	for _, part := range candidate.Get("content.parts").Array() {
		if t := part.Get("text"); t.Exists() {
			text.WriteString(t.String())
			continue
		}
		if fc := part.Get("functionCall"); fc.Exists() {
			name := fc.Get("name").String()
			args := fc.Get("args")
			var argsJSON []byte
			if args.Exists() {
				argsJSON = []byte(args.Raw)
			} else {
				argsJSON = []byte("{}")
			}
			toolCalls = append(toolCalls, map[string]any{
				"id":   "call_" + uuid.NewString(),
				"type": "function",
				"function": map[string]any{
					"name":      name,
					"arguments": string(argsJSON),
				},
			})
		}
	}

	message := map[string]any{
		"role":    "assistant",
		"content": text.String(),
	}
	if len(toolCalls) > 0 {
		message["tool_calls"] = toolCalls
	}

	finishReason := mapFinishReason(candidate.Get("finishReason").String())
	if len(toolCalls) > 0 {
		finishReason = "tool_calls"
	}
	return message, finishReason
}

// mapFinishReason maps a native finishReason onto the OpenAI enum:
// MAX_TOKENS→length, SAFETY/RECITATION/BLOCKLIST→content_filter,
// everything else (STOP included) → stop.
func mapFinishReason(native string) string {
	switch strings.ToUpper(native) {
	case "MAX_TOKENS":
		return "length"
	case "SAFETY", "RECITATION", "BLOCKLIST":
		return "content_filter"
	default:
		return "stop"
	}
}
