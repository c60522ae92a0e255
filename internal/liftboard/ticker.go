package liftboard

import (
	"context"
	"time"
)

// Clock is the time source for elapsed-time computations.
type Clock interface {
	Now() time.Time
	// Tick delivers the time once per d until stop is called.
	Tick(d time.Duration) (ticks <-chan time.Time, stop func())
}

type systemClock struct{}

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Tick(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Elapsed returns the whole seconds between start and now. A zero start or a
// start in the future yields 0.
func Elapsed(start, now time.Time) int64 {
	if start.IsZero() {
		return 0
	}
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Ticker streams the elapsed seconds of an occupied bay.
type Ticker struct {
	clock    Clock
	interval time.Duration
}

func NewTicker(clock Clock) *Ticker {
	if clock == nil {
		clock = SystemClock()
	}
	return &Ticker{clock: clock, interval: time.Second}
}

// Watch sends the elapsed seconds since start right away and then on every
// tick until ctx is done. With a zero start it sends 0 and closes.
// The returned channel is closed when watching stops.
func (t *Ticker) Watch(ctx context.Context, start time.Time) <-chan int64 {
	out := make(chan int64)
	if start.IsZero() {
		go func() {
			defer close(out)
			select {
			case out <- 0:
			case <-ctx.Done():
			}
		}()
		return out
	}

	ticks, stop := t.clock.Tick(t.interval)
	go func() {
		defer close(out)
		defer stop()

		select {
		case out <- Elapsed(start, t.clock.Now()):
		case <-ctx.Done():
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticks:
				select {
				case out <- Elapsed(start, now):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
