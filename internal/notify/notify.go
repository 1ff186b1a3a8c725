// Package notify delivers alarm notifications. Delivery targets are plain
// Notifiers composed into chains, so the scheduler never knows whether a
// notification ends up on the desktop, in the TUI banner, or in a log.
package notify

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// ErrUnavailable marks a notifier that cannot deliver on this system.
var ErrUnavailable = errors.New("notify: no delivery mechanism available")

// Level grades a notification for display emphasis.
type Level string

const (
	LevelInfo  Level = "info"
	LevelAlarm Level = "alarm"
)

// Notification is one deliverable message.
type Notification struct {
	Title      string
	Body       string
	Level      Level
	At         time.Time
	ActivityID string
}

// Notifier delivers a notification. Implementations must be safe to call
// from the scheduler goroutine.
type Notifier interface {
	Notify(n Notification) error
}

// Func adapts a function to the Notifier interface.
type Func func(n Notification) error

func (f Func) Notify(n Notification) error { return f(n) }

// Chain tries each notifier in order and stops at the first success.
// ErrUnavailable from one target falls through to the next; any other error
// is returned immediately.
type Chain []Notifier

func (c Chain) Notify(n Notification) error {
	if len(c) == 0 {
		return ErrUnavailable
	}
	for _, target := range c {
		err := target.Notify(n)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnavailable) {
			continue
		}
		return err
	}
	return ErrUnavailable
}

// Tee delivers to every target, returning the first error after trying all.
type Tee []Notifier

func (t Tee) Notify(n Notification) error {
	var firstErr error
	for _, target := range t {
		if err := target.Notify(n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Desktop delivers through the OS notification facility: notify-send on
// Linux and the BSDs, osascript on macOS. Reports ErrUnavailable when the
// tool is missing.
type Desktop struct{}

func (Desktop) Notify(n Notification) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", n.Body, n.Title)
		return runTool("osascript", "-e", script)
	default:
		return runTool("notify-send", n.Title, n.Body)
	}
}

func runTool(name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%w: %s not found", ErrUnavailable, name)
	}
	cmd := exec.Command(path, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify: %s: %w", name, err)
	}
	return nil
}

// Bell writes the terminal bell character, an audible cue that works even
// when no desktop notification daemon is running.
type Bell struct{}

func (Bell) Notify(Notification) error {
	_, err := os.Stdout.WriteString("\a")
	return err
}
