package dispatcher

import (
	"context"
	"time"

	"llmgateway/internal/errors"
	"llmgateway/internal/logging"
	"llmgateway/internal/monitoring"
	"llmgateway/internal/upstream"
)

// StreamHandle is a committed streaming dispatch: once returned, the
// Dispatcher will not retry. Iter must be drained and Close called by
// the caller.
type StreamHandle struct {
	CredentialID string
	Iter         *upstream.ChunkIterator
	close        func() error
}

// Close releases the underlying response body.
func (h *StreamHandle) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// ExecuteStream runs the attempt loop for a streaming call. An attempt
// is retried exactly like Execute as long as the upstream rejects with
// a non-2xx status before any bytes have been handed to the client (the
// status line and headers are available, but no body has been read or
// forwarded yet). Once a 2xx response is obtained, the attempt is
// committed: ReportSuccess fires and the live iterator goes back to the
// caller, win or lose. A mid-stream read error belongs to the handler,
// which surfaces it as an in-band terminal chunk; it is never retried
// here.
func (d *Dispatcher) ExecuteStream(ctx context.Context, path string, body []byte) (*StreamHandle, *errors.GatewayError) {
	deadline := time.Now().Add(d.opts.OverallDeadline)
	tried := make(map[string]struct{})
	log := logging.Logger()

	var lastErr *errors.GatewayError
	for len(tried) < d.opts.MaxAttempts && time.Now().Before(deadline) {
		cred, leaseErr := d.pool.Lease(tried)
		if leaseErr != nil {
			return nil, leaseErr
		}
		tried[cred.ID] = struct{}{}
		monitoring.UpstreamAttemptsTotal.WithLabelValues(cred.ID).Inc()

		// The stream can outlive the attempt deadline once committed; only
		// the pre-commit phase runs under it. Cancel is deferred into the
		// handle's Close for the committed path.
		attemptCtx, cancel := context.WithCancel(ctx)
		preCommit := time.AfterFunc(time.Until(upstream.AttemptDeadline(deadline, d.opts.PerAttemptTimeout)), cancel)
		attempt, err := d.client.Stream(attemptCtx, cred, path, body)
		if !preCommit.Stop() && err == nil {
			// The attempt timer fired as the headers arrived; the body is
			// already cut off, so this counts as a pre-commit timeout.
			attempt.Stream.Body.Close()
			err = context.DeadlineExceeded
		}
		if err != nil {
			cancel()
			kind := errors.ClassifyNetwork(err)
			if kind == errors.KindClientCancelled {
				if ctx.Err() != nil {
					return nil, errors.New(errors.KindClientCancelled, "client cancelled")
				}
				// Cancelled by the attempt timer, not by the client.
				kind = errors.KindTransientUpstream
			}
			if kind == errors.KindDeadlineExceeded {
				kind = errors.KindTransientUpstream
			}
			lastErr = errors.New(kind, err.Error())
			d.pool.ReportFailure(cred.ID, kind)
			monitoring.UpstreamFailuresTotal.WithLabelValues(cred.ID, string(kind)).Inc()
			continue
		}

		if attempt.StatusCode >= 200 && attempt.StatusCode < 300 {
			// Committed: no more retries past this point.
			d.pool.ReportSuccess(cred.ID)
			iter := upstream.NewChunkIterator(attempt.Stream.Body)
			return &StreamHandle{
				CredentialID: cred.ID,
				Iter:         iter,
				close: func() error {
					cancel()
					return iter.Close()
				},
			}, nil
		}

		respBody, readErr := upstream.ReadAll(attempt.Stream)
		cancel()
		if readErr != nil {
			respBody = nil
		}
		kind := errors.ClassifyHTTP(attempt.StatusCode, respBody)
		if !kind.Retryable() {
			return nil, errors.New(kind, "upstream rejected stream request").WithUpstream(respBody)
		}
		d.pool.ReportFailure(cred.ID, kind)
		monitoring.UpstreamFailuresTotal.WithLabelValues(cred.ID, string(kind)).Inc()
		lastErr = errors.New(kind, "upstream stream attempt failed").WithUpstream(respBody)
		log.WithFields(logging.CredentialFields(cred.ID, len(tried))).
			WithField("status", attempt.StatusCode).
			Warn("upstream stream attempt classified retryable")
	}

	if !time.Now().Before(deadline) && len(tried) < d.opts.MaxAttempts {
		return nil, errors.New(errors.KindDeadlineExceeded, "overall deadline exceeded")
	}
	if lastErr == nil {
		lastErr = errors.New(errors.KindAllCredentialsExhausted, "no attempts were made")
	}
	return nil, errors.New(errors.KindAllCredentialsExhausted, lastErr.Message).WithUpstream(lastErr.Upstream)
}
