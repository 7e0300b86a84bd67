package gemini

import (
	"encoding/json"

	"llmgateway/internal/errors"
)

func marshalEnvelope(e *errors.GatewayError) ([]byte, error) {
	return json.Marshal(e.ToEnvelope())
}
