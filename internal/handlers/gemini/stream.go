package gemini

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"llmgateway/internal/constants"
	"llmgateway/internal/errors"
	"llmgateway/internal/handlers/common"
	"llmgateway/internal/monitoring"
)

// streamGenerateContent proxies a native streaming call, re-emitting
// each upstream chunk to the client with the same SSE framing the
// upstream used. Chunks are forwarded untouched and in order.
func (h *Handler) streamGenerateContent(c *gin.Context, model string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		common.WriteValidationError(c, "could not read request body")
		return
	}
	if verr := validateNativeRequest(body); verr != "" {
		common.WriteValidationError(c, verr)
		return
	}

	resolved := h.mapping.Resolve(model)
	handle, derr := h.dispatcher.ExecuteStream(c.Request.Context(), "/v1beta/models/"+resolved+":streamGenerateContent?alt=sse", body)
	if derr != nil {
		common.WriteError(c, derr)
		return
	}
	defer handle.Close()

	common.SSEHeaders(c.Writer)
	flusher, _ := c.Writer.(http.Flusher)

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
			return
		case item, ok := <-items:
			if !ok {
				return
			}
			if item.err != nil {
				streamErr := errors.New(errors.KindTransientUpstream, "upstream stream interrupted")
				payload, _ := marshalEnvelope(streamErr)
				_ = common.SSEWriteData(c.Writer, flusher, payload)
				return
			}
			if werr := common.SSEWriteData(c.Writer, flusher, item.chunk); werr != nil {
				return
			}
			monitoring.StreamChunksForwarded.Inc()
		}
	}
}
