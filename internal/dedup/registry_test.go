package dedup

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryClaimOnce(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.TryClaim(Completed, "a"))
	assert.False(t, r.TryClaim(Completed, "a"))
	assert.True(t, r.TryClaim(Modal, "a"), "kinds are independent")
	assert.True(t, r.TryClaim(Completed, "b"), "ids are independent")
}

func TestReleaseAllowsReclaim(t *testing.T) {
	r := NewRegistry()
	r.TryClaim(Alert, "a")

	r.Release(Alert, "a")

	assert.False(t, r.Has(Alert, "a"))
	assert.True(t, r.TryClaim(Alert, "a"))
}

func TestReleaseAllClearsEveryKind(t *testing.T) {
	r := NewRegistry()
	for _, k := range Kinds {
		r.TryClaim(k, "a")
		r.TryClaim(k, "b")
	}

	r.ReleaseAll("a")

	for _, k := range Kinds {
		assert.False(t, r.Has(k, "a"), string(k))
		assert.True(t, r.Has(k, "b"), string(k))
	}
}

func TestReleaseUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Release(Modal, "missing")
	r.ReleaseAll("missing")
	assert.False(t, r.Has(Modal, "missing"))
}

func TestTryClaimConcurrent(t *testing.T) {
	r := NewRegistry()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.TryClaim(Completed, "a") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
