package schedule

import (
	"sync"
	"time"
)

// Periodic calls fn every interval between Start and Stop
type Periodic struct {
	interval time.Duration
	fn       func()

	mu   sync.Mutex
	stop chan struct{}
}

// NewPeriodic creates a stopped periodic task
func NewPeriodic(interval time.Duration, fn func()) *Periodic {
	return &Periodic{interval: interval, fn: fn}
}

// Start arms the task. Starting a running task does nothing.
func (p *Periodic) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	go p.run(stop)
}

// Stop disarms the task without waiting for a running fn to return, so it
// may be called from inside fn. A tick already in flight may still run.
func (p *Periodic) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
}

// Running reports whether the task is armed
func (p *Periodic) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

func (p *Periodic) run(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// a stop racing with the tick wins
			select {
			case <-stop:
				return
			default:
			}
			p.fn()
		}
	}
}

// OneShot calls fn once, delay after the most recent Arm. Re-arming
// supersedes the pending call.
type OneShot struct {
	delay time.Duration
	fn    func(gen uint64)

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewOneShot creates an unarmed one-shot task. fn receives the generation
// it was armed with; compare it with Generation to drop superseded calls.
func NewOneShot(delay time.Duration, fn func(gen uint64)) *OneShot {
	return &OneShot{delay: delay, fn: fn}
}

// Arm schedules fn, replacing any pending call, and returns the new generation
func (o *OneShot) Arm() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
	}
	o.gen++
	gen := o.gen
	o.timer = time.AfterFunc(o.delay, func() {
		if o.Generation() != gen {
			return
		}
		o.fn(gen)
	})
	return gen
}

// Cancel drops the pending call, if any
func (o *OneShot) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.gen++
}

// Generation returns the generation of the most recent Arm or Cancel
func (o *OneShot) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen
}
