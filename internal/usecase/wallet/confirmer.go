package wallet

import (
	"context"
	"sync"
	"time"
)

// Confirmer supervises the fire-and-forget settlement tasks, one per
// transaction id. Each task waits a fixed delay (simulated network
// confirmation latency) and then settles; the initiating call never waits
// on it. On shutdown, in-flight tasks are cancelled and aborted so a
// restart can never double-apply a balance delta.
type Confirmer struct {
	delay  time.Duration
	settle func(txID string)
	abort  func(txID string)

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	closed  bool
	wg      sync.WaitGroup
}

func NewConfirmer(delay time.Duration, settle, abort func(txID string)) *Confirmer {
	return &Confirmer{
		delay:   delay,
		settle:  settle,
		abort:   abort,
		cancels: map[string]context.CancelFunc{},
	}
}

// Schedule registers a settlement task for the transaction. Scheduling after
// shutdown aborts immediately instead of leaking a task.
func (c *Confirmer) Schedule(txID string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.abort(txID)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancels[txID] = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.cancels, txID)
			c.mu.Unlock()
			c.wg.Done()
		}()

		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			c.settle(txID)
		case <-ctx.Done():
			c.abort(txID)
		}
	}()
}

// InFlight reports how many settlement tasks have not finished yet.
func (c *Confirmer) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cancels)
}

// Shutdown cancels every in-flight task and waits for them to abort.
func (c *Confirmer) Shutdown() {
	c.mu.Lock()
	c.closed = true
	for _, cancel := range c.cancels {
		cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
}
