// Package dispatcher executes one logical request against the upstream,
// retrying across credentials: lease a credential, call the upstream
// client, classify the outcome, cool the credential if it failed, and
// either retry with the next credential or return. Retries stop at
// max_attempts or at the request's overall deadline, whichever comes
// first.
package dispatcher

import (
	"context"
	"time"

	"llmgateway/internal/credential"
	"llmgateway/internal/errors"
	"llmgateway/internal/logging"
	"llmgateway/internal/monitoring"
	"llmgateway/internal/upstream"
)

// Options configures a Dispatcher's attempt-loop shape.
type Options struct {
	MaxAttempts       int
	PerAttemptTimeout time.Duration
	OverallDeadline   time.Duration
}

// Dispatcher orchestrates upstream calls against a credential pool.
type Dispatcher struct {
	pool   *credential.Pool
	client *upstream.Client
	opts   Options
}

// New builds a Dispatcher.
func New(pool *credential.Pool, client *upstream.Client, opts Options) *Dispatcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &Dispatcher{pool: pool, client: client, opts: opts}
}

// Result is a buffered (non-streaming) dispatch outcome.
type Result struct {
	Body         []byte
	CredentialID string
}

// Execute runs the attempt loop for a non-streaming call. Terminal
// non-retryable outcomes (validation, model-not-found) return
// immediately without cooling the serving credential; retryable ones
// cool it and move to the next. When attempts run out the last
// classified cause is wrapped in an upstream_exhausted error.
func (d *Dispatcher) Execute(ctx context.Context, path string, body []byte) (Result, *errors.GatewayError) {
	deadline := time.Now().Add(d.opts.OverallDeadline)
	tried := make(map[string]struct{})
	log := logging.Logger()

	var lastErr *errors.GatewayError
	for len(tried) < d.opts.MaxAttempts && time.Now().Before(deadline) {
		cred, leaseErr := d.pool.Lease(tried)
		if leaseErr != nil {
			return Result{}, leaseErr
		}
		tried[cred.ID] = struct{}{}
		monitoring.UpstreamAttemptsTotal.WithLabelValues(cred.ID).Inc()

		attemptDeadline := upstream.AttemptDeadline(deadline, d.opts.PerAttemptTimeout)
		attemptCtx, cancel := context.WithDeadline(ctx, attemptDeadline)
		attempt, err := d.client.Generate(attemptCtx, cred, path, body)
		cancel()

		if err != nil {
			kind := errors.ClassifyNetwork(err)
			switch kind {
			case errors.KindClientCancelled:
				// No failure accounting for a client that went away.
				return Result{}, errors.New(errors.KindClientCancelled, "client cancelled")
			case errors.KindDeadlineExceeded:
				if !time.Now().Before(deadline) {
					return Result{}, errors.New(errors.KindDeadlineExceeded, "overall deadline exceeded")
				}
				// Per-attempt timeout only: the upstream was slow, not the client.
				kind = errors.KindTransientUpstream
			}
			lastErr = errors.New(kind, err.Error())
			d.pool.ReportFailure(cred.ID, kind)
			monitoring.UpstreamFailuresTotal.WithLabelValues(cred.ID, string(kind)).Inc()
			log.WithFields(logging.CredentialFields(cred.ID, len(tried))).WithError(err).Warn("upstream attempt failed")
			continue
		}

		kind := classifyAttempt(attempt.StatusCode, attempt.Body)
		switch {
		case kind == errors.KindOK || kind == errors.KindContentFiltered:
			d.pool.ReportSuccess(cred.ID)
			return Result{Body: attempt.Body, CredentialID: cred.ID}, nil
		case !kind.Retryable():
			// Validation/model-not-found: terminal, no cooling.
			return Result{}, errors.New(kind, "upstream rejected request").WithUpstream(attempt.Body)
		default:
			d.pool.ReportFailure(cred.ID, kind)
			monitoring.UpstreamFailuresTotal.WithLabelValues(cred.ID, string(kind)).Inc()
			lastErr = errors.New(kind, "upstream attempt failed").WithUpstream(attempt.Body)
			log.WithFields(logging.CredentialFields(cred.ID, len(tried))).
				WithField("status", attempt.StatusCode).
				WithField("kind", string(kind)).
				Warn("upstream attempt classified retryable")
		}
	}

	if !time.Now().Before(deadline) && len(tried) < d.opts.MaxAttempts {
		return Result{}, errors.New(errors.KindDeadlineExceeded, "overall deadline exceeded")
	}
	if lastErr == nil {
		lastErr = errors.New(errors.KindAllCredentialsExhausted, "no attempts were made")
	}
	exhausted := errors.New(errors.KindAllCredentialsExhausted, lastErr.Message).WithUpstream(lastErr.Upstream)
	return Result{}, exhausted
}

func classifyAttempt(status int, body []byte) errors.Kind {
	if status >= 200 && status < 300 {
		if errors.IsContentFiltered(body) {
			return errors.KindContentFiltered
		}
		return errors.KindOK
	}
	return errors.ClassifyHTTP(status, body)
}
