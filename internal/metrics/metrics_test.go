package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallbacks(t *testing.T) {
	t.Run("Counts per alias and outcome", func(t *testing.T) {
		c := NewCallbacks()
		c.Observe("sips_test", OutcomeChanged, 2*time.Millisecond)
		c.Observe("sips_test", OutcomeIgnored, 4*time.Millisecond)
		c.Observe("xendit_id", OutcomeRejected, 0)

		s := c.Snapshot()
		assert.Equal(t, uint64(3), s.Total)
		assert.Equal(t, uint64(1), s.ByAlias["sips_test"][OutcomeChanged])
		assert.Equal(t, uint64(1), s.ByAlias["sips_test"][OutcomeIgnored])
		assert.Equal(t, uint64(1), s.ByAlias["xendit_id"][OutcomeRejected])
		assert.InDelta(t, 2.0, s.AvgLatencyMS, 0.001)
	})

	t.Run("Empty", func(t *testing.T) {
		s := NewCallbacks().Snapshot()
		assert.Zero(t, s.Total)
		assert.Zero(t, s.AvgLatencyMS)
		assert.Empty(t, s.ByAlias)
	})

	t.Run("Concurrent", func(t *testing.T) {
		c := NewCallbacks()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Observe("a", OutcomeChanged, time.Millisecond)
			}()
		}
		wg.Wait()
		assert.Equal(t, uint64(50), c.Snapshot().ByAlias["a"][OutcomeChanged])
	})
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), time.Millisecond)
}
