package game

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestBarrierRounds(t *testing.T) {
	const (
		parties = 3
		rounds  = 200
	)
	b := newBarrier(parties)

	// Each party publishes its round before waiting; after the wait every
	// other party must have reached at least the same round.
	var progress [parties]atomic.Int64
	var failures atomic.Int64
	var wg sync.WaitGroup

	for id := 0; id < parties; id++ {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := int64(1); r <= rounds; r++ {
				progress[id].Store(r)
				b.wait()
				for other := range progress {
					if progress[other].Load() < r {
						failures.Add(1)
					}
				}
			}
		}()
	}
	wg.Wait()

	if n := failures.Load(); n != 0 {
		t.Errorf("%d observations of a party behind the barrier round", n)
	}
}

func TestBarrierPublishesWrites(t *testing.T) {
	b := newBarrier(2)
	var shared []int

	done := make(chan struct{})
	go func() {
		defer close(done)
		shared = append(shared, 1, 2, 3)
		b.wait()
	}()

	b.wait()
	if len(shared) != 3 {
		t.Errorf("write before the barrier not visible: %v", shared)
	}
	<-done
}
