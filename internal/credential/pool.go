package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"llmgateway/internal/errors"
)

// CoolingPeriods configures how long a credential cools for each
// retryable failure kind.
type CoolingPeriods struct {
	Auth      time.Duration
	Quota     time.Duration
	Transient time.Duration
}

func (p CoolingPeriods) forKind(kind errors.Kind) time.Duration {
	switch kind {
	case errors.KindAuthRejected:
		return p.Auth
	case errors.KindQuotaExceeded:
		return p.Quota
	default:
		return p.Transient
	}
}

// Options configures a Pool.
type Options struct {
	MaxFailuresBeforeCool int
	Cooling               CoolingPeriods
	Now                   func() time.Time // overridable for tests
}

// Pool owns the credential set and all state transitions. Every mutation
// is serialized under a single mutex; the critical section never
// performs upstream I/O.
type Pool struct {
	mu    sync.Mutex
	byID  map[string]*Credential
	order []string // stable iteration order, insertion order

	maxFailuresBeforeCool int
	cooling               CoolingPeriods
	now                   func() time.Time
}

// IDFor derives the stable, loggable id for a secret: a short hex prefix
// of its SHA-256 digest, so the id never reveals the secret itself.
func IDFor(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])[:12]
}

// NewPool builds a Pool from a list of raw secrets.
func NewPool(secrets []string, opts Options) *Pool {
	if opts.MaxFailuresBeforeCool <= 0 {
		opts.MaxFailuresBeforeCool = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	p := &Pool{
		byID:                  make(map[string]*Credential, len(secrets)),
		maxFailuresBeforeCool: opts.MaxFailuresBeforeCool,
		cooling:               opts.Cooling,
		now:                   opts.Now,
	}
	for _, s := range secrets {
		p.addLocked(s)
	}
	return p
}

func (p *Pool) addLocked(secret string) *Credential {
	id := IDFor(secret)
	if existing, ok := p.byID[id]; ok {
		return existing
	}
	c := &Credential{
		ID:     id,
		Secret: secret,
		State:  Active,
	}
	p.byID[id] = c
	p.order = append(p.order, id)
	return c
}

// sweepLocked transitions any Cooling credential whose CoolingUntil has
// passed back to Active, resetting its consecutive failure count. Must
// be called with p.mu held.
func (p *Pool) sweepLocked() {
	now := p.now()
	for _, id := range p.order {
		c := p.byID[id]
		if c.State == Cooling && !c.CoolingUntil.After(now) {
			c.State = Active
			c.ConsecutiveFailures = 0
			c.CoolingUntil = time.Time{}
		}
	}
}

// Lease returns the Active credential with the oldest LastUsedAt that is
// not in exclude, ties broken lexicographically by id. It marks the
// chosen credential used (LastUsedAt=now, TotalRequests++) atomically
// with the selection, so two concurrent leases never pick the same
// record without one of them observing the other's LastUsedAt update.
func (p *Pool) Lease(exclude map[string]struct{}) (Credential, *errors.GatewayError) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sweepLocked()

	var best *Credential
	for _, id := range p.order {
		if _, skip := exclude[id]; skip {
			continue
		}
		c := p.byID[id]
		if c.State != Active {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		if c.LastUsedAt.Before(best.LastUsedAt) {
			best = c
		} else if c.LastUsedAt.Equal(best.LastUsedAt) && c.ID < best.ID {
			best = c
		}
	}
	if best == nil {
		return Credential{}, p.noHealthyCredentialLocked()
	}

	best.LastUsedAt = p.now()
	best.TotalRequests++
	return best.Clone(), nil
}

// noHealthyCredentialLocked builds the no-healthy-credential error with
// a Retry-After hint derived from the soonest CoolingUntil. Must be
// called with p.mu held.
func (p *Pool) noHealthyCredentialLocked() *errors.GatewayError {
	now := p.now()
	var soonest time.Time
	for _, id := range p.order {
		c := p.byID[id]
		if c.State != Cooling {
			continue
		}
		if soonest.IsZero() || c.CoolingUntil.Before(soonest) {
			soonest = c.CoolingUntil
		}
	}
	e := errors.New(errors.KindNoHealthyCredential, "no active credential available")
	if !soonest.IsZero() {
		secs := int(soonest.Sub(now).Seconds())
		if secs < 0 {
			secs = 0
		}
		e.WithRetryAfter(secs)
	}
	return e
}

// ReportSuccess resets the credential's consecutive failure count.
func (p *Pool) ReportSuccess(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.byID[id]; ok {
		c.ConsecutiveFailures = 0
	}
}

// ReportFailure increments the failure counters and, if the consecutive
// threshold is crossed or the kind is inherently cooling
// (AuthRejected/QuotaExceeded), transitions the credential to Cooling
// with CoolingUntil = now + cooling period for the kind.
func (p *Pool) ReportFailure(id string, kind errors.Kind) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.byID[id]
	if !ok {
		return
	}
	c.ConsecutiveFailures++
	c.TotalFailures++

	mustCool := c.ConsecutiveFailures >= p.maxFailuresBeforeCool ||
		kind == errors.KindAuthRejected || kind == errors.KindQuotaExceeded
	if mustCool {
		c.State = Cooling
		c.CoolingUntil = p.now().Add(p.cooling.forKind(kind))
	}
}

// Len returns the number of credentials in the pool.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}
