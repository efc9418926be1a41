package sessions

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureGateExclusive(t *testing.T) {
	g := NewFeatureGate("video")
	assert.True(t, g.TryAcquire())
	assert.True(t, g.Busy())
	assert.False(t, g.TryAcquire())

	g.Release()
	assert.False(t, g.Busy())
	assert.True(t, g.TryAcquire())
}

func TestFeatureGateConcurrentAcquire(t *testing.T) {
	g := NewFeatureGate("image")
	var won atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				won.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), won.Load())
}

func TestGatesAreIndependent(t *testing.T) {
	gates := NewGates()
	assert.Same(t, gates.Get("video"), gates.Get("video"))

	assert.True(t, gates.Get("video").TryAcquire())
	assert.True(t, gates.Get("image").TryAcquire(), "a busy video gate does not block images")
}
