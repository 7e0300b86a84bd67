// Package cache memoizes non-streaming completion artifacts keyed by a
// canonical fingerprint of the request, bounded in size (LRU) and
// staleness (TTL), with single-flight coalescing of concurrent
// identical requests.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// fingerprintFields are the request fields that determine the cached
// artifact, in the order they are digested. Nondeterministic or
// presentation-only fields (stream, user, n) are deliberately absent.
var fingerprintFields = []string{
	"model",
	"messages",
	"tools",
	"tool_choice",
	"temperature",
	"top_p",
	"top_k",
	"max_tokens",
	"max_completion_tokens",
	"stop",
	"response_format",
}

// Fingerprint computes the stable digest of a request body: each
// relevant field is canonicalized (object keys sorted, numbers
// normalized) and fed into SHA-256 under its field name. Two requests
// that differ only in key order or number spelling fingerprint the
// same.
func Fingerprint(model string, rawJSON []byte) string {
	h := sha256.New()
	h.Write([]byte("model=" + model + ";"))
	for _, field := range fingerprintFields {
		v := gjson.GetBytes(rawJSON, field)
		if !v.Exists() {
			continue
		}
		h.Write([]byte(field + "="))
		h.Write([]byte(canonicalize(v)))
		h.Write([]byte(";"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Eligible reports whether a request may be served from (and populate)
// the cache: non-streaming, deterministic (temperature absent or 0),
// and tool-free.
func Eligible(rawJSON []byte) bool {
	if gjson.GetBytes(rawJSON, "stream").Bool() {
		return false
	}
	if t := gjson.GetBytes(rawJSON, "temperature"); t.Exists() && t.Float() != 0 {
		return false
	}
	if gjson.GetBytes(rawJSON, "tools").Exists() {
		return false
	}
	return true
}

// canonicalize renders a gjson value into a stable string form: objects
// re-serialized with sorted keys, arrays element-wise, numbers via
// strconv.FormatFloat so 1, 1.0, and 1e0 all canonicalize identically.
func canonicalize(v gjson.Result) string {
	switch {
	case v.IsObject():
		m := v.Map()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			b.WriteString(canonicalize(m[k]))
		}
		b.WriteByte('}')
		return b.String()
	case v.IsArray():
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.Array() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(canonicalize(e))
		}
		b.WriteByte(']')
		return b.String()
	case v.Type == gjson.Number:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case v.Type == gjson.String:
		sb, _ := json.Marshal(v.String())
		return string(sb)
	case v.Type == gjson.True:
		return "true"
	case v.Type == gjson.False:
		return "false"
	default:
		return "null"
	}
}
