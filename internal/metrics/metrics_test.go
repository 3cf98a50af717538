package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLoginAndRefreshCounters(t *testing.T) {
	before := testutil.ToFloat64(loginAttempts.WithLabelValues("invalid_credentials"))
	LoginAttempt("invalid_credentials")
	LoginAttempt("invalid_credentials")
	assert.Equal(t, before+2, testutil.ToFloat64(loginAttempts.WithLabelValues("invalid_credentials")))

	before = testutil.ToFloat64(tokenRefreshes.WithLabelValues("success"))
	TokenRefresh("success")
	assert.Equal(t, before+1, testutil.ToFloat64(tokenRefreshes.WithLabelValues("success")))
}

func TestCacheLookup(t *testing.T) {
	for _, r := range []string{CacheHit, CacheMiss, CacheError} {
		before := testutil.ToFloat64(cacheLookups.WithLabelValues(r))
		CacheLookup(r)
		assert.Equal(t, before+1, testutil.ToFloat64(cacheLookups.WithLabelValues(r)), r)
	}
}

func TestEventPublished_SplitsByResult(t *testing.T) {
	ok := eventsPublished.WithLabelValues("account.deleted", "ok")
	failed := eventsPublished.WithLabelValues("account.deleted", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	EventPublished("account.deleted", nil)
	EventPublished("account.deleted", errors.New("nack"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}
