package report

import (
	"sync"
	"time"
)

// Simulator is the cosmetic progress indicator: it climbs from 0 to 90 while
// a submission is in flight and is forced to 100 on success. It never
// reflects real server progress. Start clears any earlier ticker so repeated
// submissions cannot accumulate duplicates.
type Simulator struct {
	mu    sync.Mutex
	tick  time.Duration
	value int
	stop  chan struct{}
	subs  map[chan int]struct{}
}

func NewSimulator(tick time.Duration) *Simulator {
	if tick <= 0 {
		tick = 200 * time.Millisecond
	}
	return &Simulator{tick: tick, subs: make(map[chan int]struct{})}
}

// Start resets the value to 0 and begins ticking toward 90. Any previous run
// is cancelled first.
func (s *Simulator) Start() {
	s.mu.Lock()
	s.stopLocked()
	s.value = 0
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()
	s.publish(0)

	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.stop != stop {
					s.mu.Unlock()
					return
				}
				if s.value >= 90 {
					s.mu.Unlock()
					return
				}
				s.value++
				v := s.value
				s.mu.Unlock()
				s.publish(v)
			}
		}
	}()
}

// Stop cancels the ticker, leaving the value where it was. Safe to call
// repeatedly and on a simulator that never started.
func (s *Simulator) Stop() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

// Finish cancels the ticker and forces the value to 100.
func (s *Simulator) Finish() {
	s.mu.Lock()
	s.stopLocked()
	s.value = 100
	s.mu.Unlock()
	s.publish(100)
}

// Reset cancels the ticker and returns the value to 0.
func (s *Simulator) Reset() {
	s.mu.Lock()
	s.stopLocked()
	s.value = 0
	s.mu.Unlock()
	s.publish(0)
}

func (s *Simulator) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// Value returns the current progress, 0..100.
func (s *Simulator) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe registers a listener for progress updates. Slow listeners miss
// intermediate values rather than blocking the simulator.
func (s *Simulator) Subscribe() chan int {
	ch := make(chan int, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Simulator) Unsubscribe(ch chan int) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

// Subscribers reports how many listeners are registered.
func (s *Simulator) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Simulator) publish(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- v:
		default:
		}
	}
}
