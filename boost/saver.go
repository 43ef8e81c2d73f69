package boost

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSaveDebounce is how long the Saver waits after the last mutation
// before flushing.
const DefaultSaveDebounce = 5 * time.Second

// Timer is the stoppable handle returned by a Clock.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks. The real implementation delegates to
// time.AfterFunc; tests inject a fake to drive debounce deterministically.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Saver is a dirty-tracker that debounces flushes: Mark schedules a flush
// after the debounce interval, and repeated marks before the flush coalesce
// into a single write. Flush drains any pending timer and writes
// synchronously; it is the clean-shutdown path.
type Saver struct {
	mu       sync.Mutex
	flush    func() error
	interval time.Duration
	clock    Clock
	timer    Timer
	dirty    bool
	logger   *slog.Logger
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithSaveInterval sets the debounce interval.
// Default is DefaultSaveDebounce.
func WithSaveInterval(interval time.Duration) SaverOption {
	return func(s *Saver) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithSaverClock sets a custom clock. Default is the wall clock.
func WithSaverClock(clock Clock) SaverOption {
	return func(s *Saver) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSaverLogger sets a custom logger.
// Default is slog.Default().
func WithSaverLogger(logger *slog.Logger) SaverOption {
	return func(s *Saver) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewSaver creates a debounced saver around a flush callback.
func NewSaver(flush func() error, opts ...SaverOption) (*Saver, error) {
	if flush == nil {
		return nil, ErrFlushFuncRequired
	}
	s := &Saver{
		flush:    flush,
		interval: DefaultSaveDebounce,
		clock:    realClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Mark records a mutation and (re)schedules the debounced flush.
func (s *Saver) Mark() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(s.interval, s.fire)
}

func (s *Saver) fire() {
	if err := s.Flush(); err != nil {
		s.logger.Error("error flushing debounced save", "err", err)
	}
}

// Flush drains any pending timer and performs one synchronous write if the
// state is dirty. Safe to call when clean.
func (s *Saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.dirty = false
	flush := s.flush
	s.mu.Unlock()

	if err := flush(); err != nil {
		// Keep the state dirty so a later flush retries the write.
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

// Dirty reports whether a mutation is awaiting flush.
func (s *Saver) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
