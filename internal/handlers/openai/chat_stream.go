package openai

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"llmgateway/internal/constants"
	"llmgateway/internal/errors"
	"llmgateway/internal/handlers/common"
	"llmgateway/internal/logging"
	"llmgateway/internal/monitoring"
	"llmgateway/internal/translator"
)

// streamChat dispatches a streaming completion and pipes translated
// chunks to the client as SSE. Before the stream commits, errors map to
// normal HTTP error responses; after commit they become a final in-band
// error payload followed by stream closure.
func (h *Handler) streamChat(c *gin.Context, body []byte, requested, resolved string) {
	native := translator.ToNativeRequest(body)
	handle, derr := h.dispatcher.ExecuteStream(c.Request.Context(), streamPath(resolved), native)
	if derr != nil {
		common.WriteError(c, derr)
		return
	}
	defer handle.Close()

	common.SSEHeaders(c.Writer)
	flusher, _ := c.Writer.(http.Flusher)
	state := translator.NewStreamState(requested)

	// The upstream reader feeds a bounded channel; the SSE writer drains
	// it. A slow client fills the channel and stalls the reader, so
	// nothing buffers beyond a few chunks.
	type streamItem struct {
		chunk []byte
		err   error
	}
	items := make(chan streamItem, constants.StreamFlushChunks)
	go func() {
		defer close(items)
		for {
			chunk, rerr := handle.Iter.Next()
			if rerr != nil {
				if rerr != io.EOF {
					select {
					case items <- streamItem{err: rerr}:
					case <-c.Request.Context().Done():
					}
				}
				return
			}
			select {
			case items <- streamItem{chunk: chunk}:
			case <-c.Request.Context().Done():
				return
			}
		}
	}()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			// Closing the handle aborts the upstream read promptly; no
			// failure is recorded against the serving credential.
			return
		case item, ok := <-items:
			if !ok {
				_ = common.SSEWriteDone(c.Writer, flusher)
				return
			}
			if item.err != nil {
				logging.Logger().
					WithFields(logging.CredentialFields(handle.CredentialID, 0)).
					WithError(item.err).
					Warn("mid-stream upstream failure")
				streamErr := errors.New(errors.KindTransientUpstream, "upstream stream interrupted")
				payload, _ := marshalEnvelope(streamErr)
				_ = common.SSEWriteData(c.Writer, flusher, payload)
				return
			}
			for _, out := range state.Translate(item.chunk) {
				if werr := common.SSEWriteData(c.Writer, flusher, out.JSON); werr != nil {
					return
				}
				monitoring.StreamChunksForwarded.Inc()
			}
		}
	}
}

func marshalEnvelope(e *errors.GatewayError) ([]byte, error) {
	return json.Marshal(e.ToEnvelope())
}
