package credential

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"llmgateway/internal/errors"
)

func testPool(secrets []string, now *time.Time) *Pool {
	return NewPool(secrets, Options{
		MaxFailuresBeforeCool: 3,
		Cooling: CoolingPeriods{
			Auth:      time.Hour,
			Quota:     5 * time.Minute,
			Transient: 30 * time.Second,
		},
		Now: func() time.Time { return *now },
	})
}

func TestLeasePicksLeastRecentlyUsed(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a", "secret-b"}, &now)

	first, err := p.Lease(nil)
	require.Nil(t, err)

	now = now.Add(time.Second)
	second, err := p.Lease(nil)
	require.Nil(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// The first credential is now the older of the two again.
	now = now.Add(time.Second)
	third, err := p.Lease(nil)
	require.Nil(t, err)
	require.Equal(t, first.ID, third.ID)
}

func TestLeaseExcludeExhaustsPool(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a", "secret-b"}, &now)

	a, err := p.Lease(nil)
	require.Nil(t, err)
	b, err := p.Lease(map[string]struct{}{a.ID: {}})
	require.Nil(t, err)

	_, err = p.Lease(map[string]struct{}{a.ID: {}, b.ID: {}})
	require.NotNil(t, err)
	require.Equal(t, errors.KindNoHealthyCredential, err.Kind)
}

func TestLeaseIncrementsTotalRequests(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a"}, &now)

	for i := 0; i < 3; i++ {
		_, err := p.Lease(nil)
		require.Nil(t, err)
	}
	snap := p.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, uint64(3), snap[0].TotalRequests)
}

func TestReportFailureCoolsAfterThreshold(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a"}, &now)
	cred, _ := p.Lease(nil)

	p.ReportFailure(cred.ID, errors.KindTransientUpstream)
	p.ReportFailure(cred.ID, errors.KindTransientUpstream)
	snap := p.Snapshot()
	require.Equal(t, "active", snap[0].State)
	require.Equal(t, 2, snap[0].ConsecutiveFailures)

	p.ReportFailure(cred.ID, errors.KindTransientUpstream)
	snap = p.Snapshot()
	require.Equal(t, "cooling", snap[0].State)
	require.True(t, snap[0].CoolingUntil.Equal(now.Add(30*time.Second)))
}

func TestAuthAndQuotaFailuresCoolImmediately(t *testing.T) {
	cases := []struct {
		kind errors.Kind
		cool time.Duration
	}{
		{errors.KindAuthRejected, time.Hour},
		{errors.KindQuotaExceeded, 5 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			now := time.Now()
			p := testPool([]string{"secret-a"}, &now)
			cred, _ := p.Lease(nil)

			p.ReportFailure(cred.ID, tc.kind)
			snap := p.Snapshot()
			require.Equal(t, "cooling", snap[0].State)
			require.True(t, snap[0].CoolingUntil.Equal(now.Add(tc.cool)))
		})
	}
}

func TestSuccessResetsConsecutiveFailures(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a"}, &now)
	cred, _ := p.Lease(nil)

	p.ReportFailure(cred.ID, errors.KindTransientUpstream)
	p.ReportFailure(cred.ID, errors.KindTransientUpstream)
	p.ReportSuccess(cred.ID)

	snap := p.Snapshot()
	require.Equal(t, 0, snap[0].ConsecutiveFailures)
	require.Equal(t, uint64(2), snap[0].TotalFailures)
}

func TestCoolingSweepsBackToActive(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a"}, &now)
	cred, _ := p.Lease(nil)

	p.ReportFailure(cred.ID, errors.KindQuotaExceeded)
	_, err := p.Lease(nil)
	require.NotNil(t, err)
	require.Equal(t, errors.KindNoHealthyCredential, err.Kind)
	require.Equal(t, 300, err.RetryAfter)

	// Past the cooling window the credential returns, failures reset.
	now = now.Add(5*time.Minute + time.Second)
	leased, err := p.Lease(nil)
	require.Nil(t, err)
	require.Equal(t, cred.ID, leased.ID)
	require.Equal(t, 0, leased.ConsecutiveFailures)
}

func TestDisabledNeverLeased(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a", "secret-b"}, &now)
	a, _ := p.Lease(nil)

	require.True(t, p.AdminDisable(a.ID))
	for i := 0; i < 4; i++ {
		leased, err := p.Lease(nil)
		require.Nil(t, err)
		require.NotEqual(t, a.ID, leased.ID)
		now = now.Add(time.Second)
	}
}

func TestAdminResetPreservesCounters(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a"}, &now)
	cred, _ := p.Lease(nil)

	p.ReportFailure(cred.ID, errors.KindAuthRejected)
	require.True(t, p.AdminReset(cred.ID))

	snap := p.Snapshot()
	require.Equal(t, "active", snap[0].State)
	require.Equal(t, 0, snap[0].ConsecutiveFailures)
	require.Equal(t, uint64(1), snap[0].TotalFailures)
	require.Equal(t, uint64(1), snap[0].TotalRequests)
	require.True(t, snap[0].CoolingUntil.IsZero())
}

func TestStatePartitionInvariant(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"s1", "s2", "s3", "s4"}, &now)

	creds := p.Snapshot()
	p.ReportFailure(creds[0].ID, errors.KindAuthRejected)
	p.AdminDisable(creds[1].ID)

	states := map[string]int{}
	for _, s := range p.Snapshot() {
		states[s.State]++
	}
	require.Equal(t, len(creds), states["active"]+states["cooling"]+states["disabled"])
	require.Equal(t, 1, states["cooling"])
	require.Equal(t, 1, states["disabled"])
}

func TestConcurrentLeaseAndReport(t *testing.T) {
	p := NewPool([]string{"s1", "s2", "s3"}, Options{
		MaxFailuresBeforeCool: 3,
		Cooling:               CoolingPeriods{Transient: time.Millisecond},
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cred, err := p.Lease(nil)
				if err != nil {
					continue
				}
				if (i+j)%5 == 0 {
					p.ReportFailure(cred.ID, errors.KindTransientUpstream)
				} else {
					p.ReportSuccess(cred.ID)
				}
			}
		}(i)
	}
	wg.Wait()

	var total uint64
	for _, s := range p.Snapshot() {
		total += s.TotalRequests
	}
	require.LessOrEqual(t, total, uint64(32*50))
	require.Positive(t, total)
}

func TestApplySnapshotRestoresCooling(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a"}, &now)
	id := IDFor("secret-a")

	p.ApplySnapshot(Snapshot{
		ID:                  id,
		State:               "cooling",
		ConsecutiveFailures: 2,
		TotalRequests:       7,
		TotalFailures:       3,
		CoolingUntil:        now.Add(time.Minute),
	})

	_, err := p.Lease(nil)
	require.NotNil(t, err)
	require.Equal(t, errors.KindNoHealthyCredential, err.Kind)

	snap := p.Snapshot()
	require.Equal(t, uint64(7), snap[0].TotalRequests)
	require.Equal(t, uint64(3), snap[0].TotalFailures)
}

func TestApplySnapshotIgnoresExpiredCooling(t *testing.T) {
	now := time.Now()
	p := testPool([]string{"secret-a"}, &now)

	p.ApplySnapshot(Snapshot{
		ID:           IDFor("secret-a"),
		State:        "cooling",
		CoolingUntil: now.Add(-time.Minute),
	})
	_, err := p.Lease(nil)
	require.Nil(t, err)
}
