package credential

// ApplySnapshot restores a persisted runtime state onto the credential
// with the matching id, if it is still present in the pool. Secrets are
// never persisted, so a snapshot for a credential that no longer exists
// is silently dropped. Disabled state is not restored: whether a key is
// administratively disabled is decided by the running config, not by a
// stale snapshot.
func (p *Pool) ApplySnapshot(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.byID[s.ID]
	if !ok {
		return
	}
	c.ConsecutiveFailures = s.ConsecutiveFailures
	c.TotalRequests = s.TotalRequests
	c.TotalFailures = s.TotalFailures
	c.LastUsedAt = s.LastUsedAt
	if s.State == Cooling.String() && s.CoolingUntil.After(p.now()) {
		c.State = Cooling
		c.CoolingUntil = s.CoolingUntil
	}
}
