package translator

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ToNativeRequest converts an OpenAI chat/completions request body into
// the upstream's native generateContent payload. The model name is not
// written into the body: it travels in the URL path on the native
// surface (see ModelMapping.Resolve for how it is chosen).
func ToNativeRequest(rawJSON []byte) []byte {
	out := `{"contents":[]}`

	contents, systemText := foldMessages(rawJSON)
	if len(contents) > 0 {
		contentsJSON, _ := json.Marshal(contents)
		out, _ = sjson.SetRaw(out, "contents", string(contentsJSON))
	}

	if systemText != "" {
		sysJSON, _ := json.Marshal(map[string]any{
			"parts": []any{map[string]any{"text": systemText}},
		})
		out, _ = sjson.SetRaw(out, "systemInstruction", string(sysJSON))
	}

	genConfigJSON, _ := json.Marshal(buildGenerationConfig(rawJSON))
	out, _ = sjson.SetRaw(out, "generationConfig", string(genConfigJSON))

	out = applyTools(out, rawJSON)
	out = applyToolChoice(out, rawJSON)

	return []byte(out)
}

// foldMessages walks the OpenAI messages array into native `contents`
// entries (role user|model) plus the system instruction text. System
// messages are pulled out of the sequence and concatenated in original
// order, joined by newlines. Consecutive messages of the same native
// role merge into a single entry with their parts preserved in order.
func foldMessages(rawJSON []byte) ([]map[string]any, string) {
	messages := gjson.GetBytes(rawJSON, "messages")

	var contents []map[string]any
	var systemTexts []string

	appendParts := func(role string, parts []any) {
		if len(parts) == 0 {
			return
		}
		if n := len(contents); n > 0 && contents[n-1]["role"] == role {
			existing := contents[n-1]["parts"].([]any)
			contents[n-1]["parts"] = append(existing, parts...)
			return
		}
		contents = append(contents, map[string]any{"role": role, "parts": append([]any{}, parts...)})
	}

	for _, msg := range messages.Array() {
		role := msg.Get("role").String()
		content := msg.Get("content")

		switch role {
		case "system":
			if text := contentToText(content); text != "" {
				systemTexts = append(systemTexts, text)
			}

		case "user":
			appendParts("user", contentToParts(content))

		case "assistant":
			var parts []any
			if text := contentToText(content); text != "" {
				parts = append(parts, map[string]any{"text": text})
			}
			if toolCalls := msg.Get("tool_calls"); toolCalls.Exists() {
				for _, tc := range toolCalls.Array() {
					if tc.Get("type").String() != "function" && tc.Get("type").Exists() {
						continue
					}
					name := tc.Get("function.name").String()
					args := parseArgsBestEffort(tc.Get("function.arguments").String())
					parts = append(parts, map[string]any{
						"functionCall": map[string]any{"name": name, "args": args},
					})
				}
			}
			appendParts("model", parts)

		case "tool":
			name := msg.Get("name").String()
			response := parseToolResultBestEffort(content.String())
			part := map[string]any{
				"functionResponse": map[string]any{"name": name, "response": response},
			}
			appendParts("user", []any{part})
		}
	}

	return contents, strings.Join(systemTexts, "\n")
}

// contentToText renders a text-or-parts OpenAI content field down to a
// single string, concatenating any text parts in order. Non-text parts
// (images, audio) are dropped from the text view; contentToParts is used
// where the richer structured form is needed.
func contentToText(content gjson.Result) string {
	if !content.Exists() {
		return ""
	}
	if !content.IsArray() {
		return content.String()
	}
	var b strings.Builder
	for _, part := range content.Array() {
		if part.Get("type").String() == "text" {
			b.WriteString(part.Get("text").String())
		}
	}
	return b.String()
}

// contentToParts renders an OpenAI content field (string or structured
// parts array) into native `parts`.
func contentToParts(content gjson.Result) []any {
	if !content.Exists() {
		return nil
	}
	if !content.IsArray() {
		text := content.String()
		if text == "" {
			return nil
		}
		return []any{map[string]any{"text": text}}
	}
	var parts []any
	for _, part := range content.Array() {
		switch part.Get("type").String() {
		case "text":
			parts = append(parts, map[string]any{"text": part.Get("text").String()})
		case "image_url":
			parts = append(parts, convertImagePart(part))
		default:
			var raw any
			if json.Unmarshal([]byte(part.Raw), &raw) == nil {
				parts = append(parts, raw)
			}
		}
	}
	return parts
}

func convertImagePart(part gjson.Result) any {
	url := part.Get("image_url.url").String()
	if strings.HasPrefix(url, "data:") {
		if idx := strings.Index(url, ","); idx >= 0 {
			header := url[:idx]
			data := url[idx+1:]
			mime := "image/jpeg"
			if i := strings.Index(header, ":"); i >= 0 {
				if j := strings.Index(header[i+1:], ";"); j >= 0 {
					mime = header[i+1 : i+1+j]
				}
			}
			return map[string]any{"inlineData": map[string]any{"mimeType": mime, "data": data}}
		}
	}
	return map[string]any{"fileData": map[string]any{"fileUri": url}}
}

// parseArgsBestEffort parses a tool call's `function.arguments` JSON
// string into a JSON value. Invalid argument strings are passed through
// as plain strings rather than rejected, so a model that emitted
// malformed arguments still gets its tool result round-tripped.
func parseArgsBestEffort(raw string) any {
	if raw == "" {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// parseToolResultBestEffort parses a tool message's content as JSON,
// falling back to a plain string.
func parseToolResultBestEffort(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// applyTools maps OpenAI `tools` to native
// `tools[0].functionDeclarations`.
func applyTools(out string, rawJSON []byte) string {
	tools := gjson.GetBytes(rawJSON, "tools")
	if !tools.Exists() {
		return out
	}
	var decls []any
	for _, tool := range tools.Array() {
		if tool.Get("type").String() != "function" && tool.Get("type").Exists() {
			continue
		}
		fn := tool.Get("function")
		decl := map[string]any{
			"name":        fn.Get("name").String(),
			"description": fn.Get("description").String(),
		}
		if params := fn.Get("parameters"); params.Exists() {
			var schema any
			if json.Unmarshal([]byte(params.Raw), &schema) == nil {
				decl["parameters"] = schema
			}
		}
		decls = append(decls, decl)
	}
	if len(decls) == 0 {
		return out
	}
	declsJSON, _ := json.Marshal(decls)
	out, _ = sjson.SetRaw(out, "tools.0.functionDeclarations", string(declsJSON))
	return out
}

// applyToolChoice maps OpenAI `tool_choice` onto native
// `toolConfig.functionCallingConfig`: none→NONE, auto→AUTO,
// required→ANY, {name:X}→{mode:ANY, allowedFunctionNames:[X]}.
func applyToolChoice(out string, rawJSON []byte) string {
	choice := gjson.GetBytes(rawJSON, "tool_choice")
	if !choice.Exists() {
		return out
	}
	var cfg map[string]any
	if choice.Type == gjson.String {
		switch choice.String() {
		case "none":
			cfg = map[string]any{"mode": "NONE"}
		case "required":
			cfg = map[string]any{"mode": "ANY"}
		default: // "auto" or unrecognized
			cfg = map[string]any{"mode": "AUTO"}
		}
	} else if name := choice.Get("function.name"); name.Exists() {
		cfg = map[string]any{"mode": "ANY", "allowedFunctionNames": []any{name.String()}}
	}
	if cfg == nil {
		return out
	}
	cfgJSON, _ := json.Marshal(cfg)
	out, _ = sjson.SetRaw(out, "toolConfig.functionCallingConfig", string(cfgJSON))
	return out
}

// buildGenerationConfig maps the OpenAI generation parameter block
// field-for-field onto native `generationConfig`.
func buildGenerationConfig(rawJSON []byte) map[string]any {
	cfg := map[string]any{}

	if v := gjson.GetBytes(rawJSON, "temperature"); v.Exists() {
		cfg["temperature"] = v.Value()
	}
	if v := gjson.GetBytes(rawJSON, "top_p"); v.Exists() {
		cfg["topP"] = v.Value()
	}
	if v := gjson.GetBytes(rawJSON, "top_k"); v.Exists() {
		cfg["topK"] = v.Value()
	}
	maxTokens := gjson.GetBytes(rawJSON, "max_tokens")
	if !maxTokens.Exists() {
		maxTokens = gjson.GetBytes(rawJSON, "max_completion_tokens")
	}
	if maxTokens.Exists() {
		cfg["maxOutputTokens"] = maxTokens.Int()
	}
	if stop := gjson.GetBytes(rawJSON, "stop"); stop.Exists() {
		var seqs []string
		if stop.IsArray() {
			for _, s := range stop.Array() {
				seqs = append(seqs, s.String())
			}
		} else {
			seqs = append(seqs, stop.String())
		}
		if len(seqs) > 0 {
			cfg["stopSequences"] = seqs
		}
	}
	if rf := gjson.GetBytes(rawJSON, "response_format.type"); rf.Exists() && rf.String() == "json_object" {
		cfg["responseMimeType"] = "application/json"
	}

	return cfg
}
