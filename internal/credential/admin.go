package credential

import "time"

// Snapshot is the observability view of one credential, used by the
// stats and admin surfaces. It never includes the secret.
type Snapshot struct {
	ID                  string    `json:"id"`
	State               string    `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	TotalRequests       uint64    `json:"total_requests"`
	TotalFailures       uint64    `json:"total_failures"`
	LastUsedAt          time.Time `json:"last_used_at,omitempty"`
	CoolingUntil        time.Time `json:"cooling_until,omitempty"`
}

// Snapshot returns an observability view of the whole pool, sweeping
// expired cooling states first so the view is current.
func (p *Pool) Snapshot() []Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sweepLocked()

	out := make([]Snapshot, 0, len(p.order))
	for _, id := range p.order {
		c := p.byID[id]
		out = append(out, Snapshot{
			ID:                  c.ID,
			State:               c.State.String(),
			ConsecutiveFailures: c.ConsecutiveFailures,
			TotalRequests:       c.TotalRequests,
			TotalFailures:       c.TotalFailures,
			LastUsedAt:          c.LastUsedAt,
			CoolingUntil:        c.CoolingUntil,
		})
	}
	return out
}

// AdminAdd registers a new credential from a raw secret. It is a no-op
// if the derived id already exists.
func (p *Pool) AdminAdd(secret string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(secret).ID
}

// AdminRemove deletes a credential outright.
func (p *Pool) AdminRemove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[id]; !ok {
		return false
	}
	delete(p.byID, id)
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

// AdminDisable sets a credential to Disabled. Only the admin surface
// ever sets this state; failure accounting never does.
func (p *Pool) AdminDisable(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.byID[id]
	if !ok {
		return false
	}
	c.State = Disabled
	c.CoolingUntil = time.Time{}
	return true
}

// AdminEnable transitions a Disabled (or Cooling) credential back to
// Active.
func (p *Pool) AdminEnable(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.byID[id]
	if !ok {
		return false
	}
	c.State = Active
	c.CoolingUntil = time.Time{}
	return true
}

// AdminReset transitions a credential to Active with its lifetime
// counters preserved but ConsecutiveFailures and CoolingUntil cleared.
func (p *Pool) AdminReset(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.byID[id]
	if !ok {
		return false
	}
	c.State = Active
	c.ConsecutiveFailures = 0
	c.CoolingUntil = time.Time{}
	return true
}

// Get returns a clone of a single credential, for admin read endpoints.
func (p *Pool) Get(id string) (Credential, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.byID[id]
	if !ok {
		return Credential{}, false
	}
	return c.Clone(), true
}
