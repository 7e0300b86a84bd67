// Package translator implements the bidirectional mapping between the
// OpenAI chat/completions schema and the upstream's native
// generateContent schema: request translation, non-streaming response
// translation, and streaming chunk translation. It operates on raw JSON
// via gjson/sjson rather than through a strongly-typed intermediate
// model, since the native schema is itself JSON-shaped and a typed
// mirror of it would only add marshal hops.
package translator

// ModelMapping resolves an OpenAI-style model name to an upstream model
// name. Names not present as a key pass through unchanged.
type ModelMapping struct {
	Mapping      map[string]string
	DefaultModel string
}

// Resolve maps name to its upstream equivalent. Native model names pass
// through unchanged; an empty name falls back to DefaultModel.
func (m ModelMapping) Resolve(name string) string {
	if mapped, ok := m.Mapping[name]; ok {
		return mapped
	}
	if name == "" {
		return m.DefaultModel
	}
	return name
}
