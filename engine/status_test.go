package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Status_totalOrder(t *testing.T) {
	assert.Less(t, int(StatusError), int(StatusStop))
	assert.Less(t, int(StatusStop), int(StatusReady))
	assert.Less(t, int(StatusReady), int(StatusBoot))
	assert.Less(t, int(StatusBoot), int(StatusWait))
	assert.Less(t, int(StatusWait), int(StatusRun))
}

func Test_sharedState_statusMonotonicTowardStop(t *testing.T) {
	s := newSharedState()
	s.SetStatus(StatusRun)

	s.SetStatus(StatusStop)
	assert.Equal(t, StatusStop, s.Status())

	s.SetStatus(StatusRun) // a late raise after STOP does not take effect
	assert.Equal(t, StatusStop, s.Status())

	var wg sync.WaitGroup
	seenPostStop := make(chan Status, 100)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			seenPostStop <- s.Status()
		}
	}()
	wg.Wait()
	close(seenPostStop)
	for seen := range seenPostStop {
		assert.LessOrEqual(t, int(seen), int(StatusStop))
	}

	s.SetStatus(StatusStop) // idempotent: still STOP
	assert.Equal(t, StatusStop, s.Status())
}

func Test_sharedState_latencyMaximaNonDecreasing(t *testing.T) {
	s := newSharedState()
	observed := []int{10, 40, 25, 60, 5}
	max := 0
	for _, v := range observed {
		s.recordO2PLatency(v)
		if v > max {
			max = v
		}
		_, gotMax, _, _ := s.Latencies()
		assert.Equal(t, max, gotMax)
	}
}

func Test_sharedState_optionFlags(t *testing.T) {
	s := newSharedState()
	s.setOptionEnabled(OptionP2OAudio, true)
	assert.True(t, s.isOptionEnabled(OptionP2OAudio))
	assert.False(t, s.isOptionEnabled(OptionO2PAudio))

	s.setOptionEnabled(OptionP2OAudio, false)
	assert.False(t, s.isOptionEnabled(OptionP2OAudio))
}
