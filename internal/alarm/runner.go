package alarm

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"agendad/internal/model"
)

// Event is one fired alarm pushed to the UI.
type Event struct {
	Activity model.Activity
	At       time.Time
}

// Runner drives the checker on a fixed cadence. Evaluation runs on a single
// goroutine; cron ticks and explicit wakeups both funnel into the same
// channel, so two triggers can never race an evaluation pass.
type Runner struct {
	mu       sync.Mutex
	checker  *Checker
	cron     *cron.Cron
	interval time.Duration
	logger   *slog.Logger

	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewRunner(checker *Checker, interval time.Duration, bufferSize int, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultPollWindow
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Runner{
		checker:  checker,
		cron:     cron.New(),
		interval: interval,
		logger:   logger,
		out:      make(chan Event, bufferSize),
		wakeup:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// C exposes fired alarms. The channel closes when the runner stops.
func (r *Runner) C() <-chan Event {
	return r.out
}

// Start begins periodic evaluation and runs one pass immediately, so alarms
// due right now are not delayed by a full interval.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New("alarm: runner already started")
	}
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, r.signalWakeup); err != nil {
		return fmt.Errorf("alarm: schedule %q: %w", spec, err)
	}
	r.started = true
	go r.loop()
	r.cron.Start()
	r.signalWakeup()
	return nil
}

// Stop halts the cadence and waits for the evaluation goroutine to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	close(r.stopCh)
	<-r.doneCh
}

// Wake requests an immediate evaluation pass, used after external edits such
// as a snooze or a snapshot reload. Coalesces with a pending wakeup.
func (r *Runner) Wake() {
	r.signalWakeup()
}

// Dropped counts alarms that fired while the output buffer was full. The
// notification itself was still delivered; only the UI event was lost.
func (r *Runner) Dropped() uint64 {
	return atomic.LoadUint64(&r.dropped)
}

func (r *Runner) loop() {
	defer close(r.doneCh)
	defer close(r.out)

	for {
		select {
		case <-r.wakeup:
			r.runCheck()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Runner) runCheck() {
	fired := r.checker.Check()
	for _, a := range fired {
		ev := Event{Activity: a, At: time.Now()}
		select {
		case r.out <- ev:
		default:
			atomic.AddUint64(&r.dropped, 1)
			r.logger.Warn("alarm: event dropped, buffer full", slog.String("id", a.ID))
		}
	}
}

func (r *Runner) signalWakeup() {
	select {
	case r.wakeup <- struct{}{}:
	default:
	}
}
