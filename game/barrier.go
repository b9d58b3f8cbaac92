package game

import "sync"

// barrier is a reusable rendezvous for a fixed number of goroutines.
// Everything written before wait returns in one party is visible to every
// other party once its wait of the same round returns.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	waiting int
	round   uint64
}

func newBarrier(parties int) *barrier {
	b := &barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// wait blocks until all parties have called wait for the current round.
func (b *barrier) wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	round := b.round
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.round++
		b.cond.Broadcast()
		return
	}
	for round == b.round {
		b.cond.Wait()
	}
}
