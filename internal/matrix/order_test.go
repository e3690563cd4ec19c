package matrix

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseOrder_StartsAtZero(t *testing.T) {
	var o PhaseOrder
	assert.Equal(t, 0, o.NextSequence(), "first sequence after construction is 0")
	assert.Equal(t, 1, o.NextSequence())
	assert.Equal(t, 2, o.NextSequence())
}

func TestPhaseOrder_StrictlyIncreasing_AcrossReset(t *testing.T) {
	var o PhaseOrder

	first := make([]int, 0, 5)
	for range 5 {
		first = append(first, o.NextSequence())
	}
	o.Reset()
	second := make([]int, 0, 3)
	for range 3 {
		second = append(second, o.NextSequence())
	}

	assert.Equal(t, 0, second[0], "sequence restarts at 0 after reset")
	for i := 1; i < len(first); i++ {
		assert.Greater(t, first[i], first[i-1])
	}
	for i := 1; i < len(second); i++ {
		assert.Greater(t, second[i], second[i-1])
	}
}

func TestPhaseOrder_ResetIdempotent(t *testing.T) {
	var o PhaseOrder
	o.NextSequence()
	o.Reset()
	o.Reset() // no phases ran in between
	assert.Equal(t, 0, o.NextSequence())
}

func TestPhaseOrder_Current(t *testing.T) {
	var o PhaseOrder
	assert.Equal(t, 0, o.Current(), "current before any allocation reports 0")

	o.NextSequence() // 0
	assert.Equal(t, 0, o.Current())
	o.NextSequence() // 1
	assert.Equal(t, 1, o.Current())
	assert.Equal(t, 1, o.Current(), "current does not allocate")
}

func TestPhaseOrder_ConcurrentUnique(t *testing.T) {
	var o PhaseOrder
	const goroutines = 50
	const perGoroutine = 100

	var wg sync.WaitGroup
	seqs := make(chan int, goroutines*perGoroutine)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				seqs <- o.NextSequence()
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int]bool)
	for s := range seqs {
		assert.False(t, seen[s], "sequence %d allocated twice", s)
		seen[s] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}
