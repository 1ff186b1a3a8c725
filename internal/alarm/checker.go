// Package alarm evaluates which activities are due for a notification and
// drives the periodic evaluation loop.
package alarm

import (
	"fmt"
	"log/slog"
	"time"

	"agendad/internal/model"
	"agendad/internal/notify"
	"agendad/internal/store"
)

// DefaultPollWindow is how far ahead of an alarm instant a poll tick still
// counts as on time. It must be at least the poll interval, or alarms landing
// between two ticks are silently lost.
const DefaultPollWindow = 30 * time.Second

// Checker performs one alarm evaluation pass over the store.
type Checker struct {
	store    *store.Store
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
	loc      *time.Location
	window   time.Duration
}

func NewChecker(s *store.Store, notifier notify.Notifier, logger *slog.Logger) *Checker {
	return &Checker{
		store:    s,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		loc:      time.Local,
		window:   DefaultPollWindow,
	}
}

// WithClock overrides the time source and location. Tests pin both.
func (c *Checker) WithClock(now func() time.Time, loc *time.Location) *Checker {
	c.now = now
	c.loc = loc
	return c
}

// Check evaluates every activity once and notifies when now falls inside
// [alarmInstant, alarmInstant+window). An alarm already fired today is
// skipped; an alarm instant missed by more than the window never fires, even
// right after startup. Fired state is committed to memory before notification and
// persisted best effort afterwards, so a storage failure cannot swallow the
// alert itself.
func (c *Checker) Check() []model.Activity {
	settings := c.store.Settings()
	if !settings.GlobalAlarmsEnabled {
		return nil
	}

	now := c.now()
	today := model.DayString(now)
	var fired []model.Activity

	for _, a := range c.store.Activities() {
		if a.AlarmMinutes <= 0 {
			continue
		}
		if a.LastAlarmTriggeredDate == today {
			continue
		}
		event, err := a.EventInstant(c.loc)
		if err != nil {
			c.logger.Warn("alarm: unschedulable activity",
				slog.String("id", a.ID), slog.String("error", err.Error()))
			continue
		}
		alarmAt := event.Add(-time.Duration(a.AlarmMinutes) * time.Minute)
		sinceAlarm := now.Sub(alarmAt)
		if sinceAlarm < 0 || sinceAlarm >= c.window {
			continue
		}

		if err := c.store.MarkAlarmFired(a.ID, today); err != nil {
			c.logger.Warn("alarm: mark fired failed",
				slog.String("id", a.ID), slog.String("error", err.Error()))
			continue
		}
		a.AlarmTriggered = true
		a.LastAlarmTriggeredDate = today

		n := notify.Notification{
			Title:      a.Title,
			Body:       notificationBody(a),
			Level:      notify.LevelAlarm,
			At:         now,
			ActivityID: a.ID,
		}
		if err := c.notifier.Notify(n); err != nil {
			c.logger.Warn("alarm: notification delivery failed",
				slog.String("id", a.ID), slog.String("error", err.Error()))
		}
		fired = append(fired, a)
	}

	if len(fired) > 0 {
		if err := c.store.Save(); err != nil {
			c.logger.Warn("alarm: persisting fired state failed",
				slog.String("error", err.Error()))
		}
	}
	return fired
}

// Snooze re-arms an activity for five minutes from its event time.
func (c *Checker) Snooze(id string) error {
	if err := c.store.SnoozeAlarm(id); err != nil {
		return err
	}
	c.logger.Info("alarm: snoozed", slog.String("id", id))
	return nil
}

func notificationBody(a model.Activity) string {
	body := fmt.Sprintf("Starts %s", model.AlarmLeadText(a.AlarmMinutes))
	if a.Time != "" {
		body += fmt.Sprintf(" at %s", a.Time)
	}
	if a.Description != "" {
		body += "\n" + a.Description
	}
	return body
}
