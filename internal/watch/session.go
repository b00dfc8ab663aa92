// Package watch waits for the artifacts of a scan to appear.
//
// A Watcher runs at most one session at a time. Starting a session for a new
// scan, or clearing the watcher, supersedes the running session: its context
// is cancelled and every continuation it still has in flight is dropped
// without reaching the observer.
package watch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RMahshie/satscan/internal/artifacts"
	"github.com/RMahshie/satscan/pkg/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// State of a watch session
type State string

const (
	StateIdle            State = "idle"
	StateWaitingForInput State = "waiting-for-input"
	StateSearching       State = "searching"
	StateFound           State = "found"
	StateError           State = "error"
)

// Mode selects whether a session first waits for the input directory
type Mode string

const (
	// ModeTwoPhase checks the input count first and waits InputWait when it is zero
	ModeTwoPhase Mode = "two-phase"
	// ModeDirect starts searching immediately
	ModeDirect Mode = "direct"
)

// Default cadence
const (
	DefaultTick         = time.Second
	DefaultInputWait    = 60 * time.Second
	DefaultPollInterval = 20 * time.Second
)

// EventType identifies what an Event reports
type EventType string

const (
	EventState     EventType = "state"
	EventElapsed   EventType = "elapsed"
	EventCountdown EventType = "countdown"
	EventPollError EventType = "poll-error"
	EventNotReady  EventType = "not-ready"
	EventFound     EventType = "found"
)

// Event is delivered to the observer. Session is a snapshot taken when the
// event was emitted.
type Event struct {
	Type      EventType
	Session   Session
	Remaining time.Duration
	Spectrum  *models.SpectrumResponseBody
	Err       error
}

// Observer receives session events. Deliveries are serialized and OnEvent
// may read the watcher through Session and Generation, but calling Start,
// Clear or Close from OnEvent deadlocks.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// Session describes one watch of one scan
type Session struct {
	ID         string
	ScanID     int64
	Mode       Mode
	StartedAt  time.Time
	State      State
	Generation uint64
	Elapsed    time.Duration
	Err        error
}

// Source is what a session polls
type Source interface {
	InputCount(ctx context.Context) (int, error)
	OutputStatus(ctx context.Context, scanID int64) (*models.OutputStatusResponseBody, error)
	Spectrum(ctx context.Context, scanID int64) (*models.SpectrumResponseBody, error)
}

// Options tune a Watcher. Zero values select the defaults.
type Options struct {
	Clock        clockwork.Clock
	Tick         time.Duration
	InputWait    time.Duration
	PollInterval time.Duration
}

// Watcher owns the current watch session
type Watcher struct {
	src          Source
	observer     Observer
	clock        clockwork.Clock
	tick         time.Duration
	inputWait    time.Duration
	pollInterval time.Duration

	generation atomic.Uint64

	// emitMu is held across a delivery and is always taken before mu
	emitMu  sync.Mutex
	mu      sync.Mutex
	current *Session
	cancel  context.CancelFunc
	running bool

	wg sync.WaitGroup
}

// NewWatcher creates an idle watcher. Events reach observer one at a time,
// never after the Start or Clear that superseded their session returns.
func NewWatcher(src Source, observer Observer, opts Options) *Watcher {
	w := &Watcher{
		src:          src,
		observer:     observer,
		clock:        opts.Clock,
		tick:         opts.Tick,
		inputWait:    opts.InputWait,
		pollInterval: opts.PollInterval,
	}
	if w.clock == nil {
		w.clock = clockwork.NewRealClock()
	}
	if w.tick <= 0 {
		w.tick = DefaultTick
	}
	if w.inputWait <= 0 {
		w.inputWait = DefaultInputWait
	}
	if w.pollInterval <= 0 {
		w.pollInterval = DefaultPollInterval
	}
	return w
}

// Start watches scanID, superseding any running session, and returns the
// session's generation. Starting the scan and mode of a session that is
// still running, or already found or failed, keeps that session.
func (w *Watcher) Start(ctx context.Context, scanID int64, mode Mode) uint64 {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()
	w.mu.Lock()

	if w.keepLocked(scanID, mode) {
		gen := w.current.Generation
		w.mu.Unlock()
		return gen
	}

	w.stopLocked()
	gen := w.generation.Add(1)
	sess := &Session{
		ID:         uuid.NewString(),
		ScanID:     scanID,
		Mode:       mode,
		StartedAt:  w.clock.Now(),
		State:      StateIdle,
		Generation: gen,
	}
	w.current = sess

	if err := artifacts.ValidateScanID(scanID); err != nil {
		sess.State = StateError
		sess.Err = err
		ev := Event{Type: EventState, Err: err, Session: *sess}
		w.mu.Unlock()
		w.deliver(ev)
		return gen
	}

	sctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.mu.Unlock()

	log.Debug().Int64("scanID", scanID).Str("mode", string(mode)).Uint64("generation", gen).Msg("Watch started")

	w.wg.Add(1)
	go w.run(sctx, gen, scanID, mode)
	return gen
}

// Clear supersedes the running session and leaves the watcher idle
func (w *Watcher) Clear() {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()
	w.generation.Add(1)
	w.current = nil
}

// Close clears the watcher and waits for every session goroutine to exit
func (w *Watcher) Close() {
	w.Clear()
	w.wg.Wait()
}

// Session returns a snapshot of the current session
func (w *Watcher) Session() (Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return Session{}, false
	}
	return *w.current, true
}

// Generation returns the current generation
func (w *Watcher) Generation() uint64 {
	return w.generation.Load()
}

func (w *Watcher) keepLocked(scanID int64, mode Mode) bool {
	if w.current == nil || w.current.ScanID != scanID || w.current.Mode != mode {
		return false
	}
	return w.running || w.current.State == StateFound || w.current.State == StateError
}

func (w *Watcher) stopLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.running = false
}

func (w *Watcher) deliver(ev Event) {
	if w.observer != nil {
		w.observer.OnEvent(ev)
	}
}

// update applies fn to the session of generation gen and delivers the event
// fn returns. It reports false, doing nothing, once gen has been superseded.
func (w *Watcher) update(gen uint64, fn func(s *Session) Event) bool {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()

	w.mu.Lock()
	if w.current == nil || w.generation.Load() != gen {
		w.mu.Unlock()
		return false
	}
	ev := fn(w.current)
	ev.Session = *w.current
	w.mu.Unlock()

	w.deliver(ev)
	return true
}

// finish marks the session of generation gen as no longer running. A session
// whose context ended before it found its spectrum goes back to idle.
func (w *Watcher) finish(ctx context.Context, gen uint64) {
	cancelled := ctx.Err() != nil

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil || w.generation.Load() != gen {
		return
	}
	w.stopLocked()
	if cancelled && w.current.State != StateFound && w.current.State != StateError {
		w.current.State = StateIdle
	}
}

func (w *Watcher) isCurrent(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current != nil && w.generation.Load() == gen
}

func (w *Watcher) run(ctx context.Context, gen uint64, scanID int64, mode Mode) {
	defer w.wg.Done()
	defer w.finish(ctx, gen)

	elapsed := w.clock.NewTicker(w.tick)
	defer elapsed.Stop()

	var (
		countdown  clockwork.Ticker
		poll       clockwork.Ticker
		countdownC <-chan time.Time
		pollC      <-chan time.Time
		remaining  time.Duration
	)
	defer func() {
		if countdown != nil {
			countdown.Stop()
		}
		if poll != nil {
			poll.Stop()
		}
	}()

	// startSearching reports whether the session should keep running
	startSearching := func() bool {
		if countdown != nil {
			countdown.Stop()
			countdown, countdownC = nil, nil
		}
		poll = w.clock.NewTicker(w.pollInterval)
		pollC = poll.Chan()

		ok := w.update(gen, func(s *Session) Event {
			s.State = StateSearching
			return Event{Type: EventState}
		})
		return ok && w.pollOnce(ctx, gen, scanID)
	}

	waitForInput := false
	if mode == ModeTwoPhase {
		count, err := w.src.InputCount(ctx)
		if err != nil {
			log.Debug().Err(err).Int64("scanID", scanID).Msg("Input count failed, treating as empty")
			count = 0
		}
		waitForInput = count == 0
	}

	if waitForInput {
		remaining = w.inputWait
		countdown = w.clock.NewTicker(w.tick)
		countdownC = countdown.Chan()

		ok := w.update(gen, func(s *Session) Event {
			s.State = StateWaitingForInput
			return Event{Type: EventState, Remaining: remaining}
		})
		if !ok {
			return
		}
	} else if !startSearching() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-elapsed.Chan():
			ok := w.update(gen, func(s *Session) Event {
				s.Elapsed = w.clock.Since(s.StartedAt)
				return Event{Type: EventElapsed}
			})
			if !ok {
				return
			}

		case <-countdownC:
			remaining -= w.tick
			if remaining > 0 {
				ok := w.update(gen, func(s *Session) Event {
					return Event{Type: EventCountdown, Remaining: remaining}
				})
				if !ok {
					return
				}
				continue
			}
			if !startSearching() {
				return
			}

		case <-pollC:
			if !w.pollOnce(ctx, gen, scanID) {
				return
			}
		}
	}
}

// pollOnce checks the scan's output once. It reports whether the session
// should keep polling.
func (w *Watcher) pollOnce(ctx context.Context, gen uint64, scanID int64) bool {
	status, err := w.src.OutputStatus(ctx, scanID)
	if err != nil {
		return w.pollError(gen, fmt.Errorf("output status: %w", err))
	}
	if !status.SpectrumFound {
		return w.isCurrent(gen)
	}

	spec, err := w.src.Spectrum(ctx, scanID)
	if err != nil {
		return w.pollError(gen, fmt.Errorf("spectrum: %w", err))
	}

	// The file exists but is still being written
	if len(spec.Points) == 0 {
		return w.update(gen, func(s *Session) Event {
			return Event{Type: EventNotReady, Spectrum: spec}
		})
	}

	w.update(gen, func(s *Session) Event {
		s.State = StateFound
		s.Elapsed = w.clock.Since(s.StartedAt)
		return Event{Type: EventFound, Spectrum: spec}
	})
	log.Debug().Int64("scanID", scanID).Int("points", len(spec.Points)).Msg("Spectrum found")
	return false
}

func (w *Watcher) pollError(gen uint64, err error) bool {
	return w.update(gen, func(s *Session) Event {
		return Event{Type: EventPollError, Err: err}
	})
}

// FormatElapsed renders d as mm:ss
func FormatElapsed(d time.Duration) string {
	sec := int64(d / time.Second)
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
