package reminder

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"healthdash/internal/model"
)

// Notifier delivers a fired reminder.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r Reminder) error

func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error { return f(ctx, r) }

// timerKey identifies one reminder instance. A rescheduled appointment gets a new key.
type timerKey struct {
	appointmentID string
	fireAt        int64
}

type armedTimer struct {
	timer       Timer
	appointment model.Appointment
	stop        Stopper
	gen         uint64
}

// Scheduler keeps the armed timer set in line with its Inputs. Every input change
// re-plans from scratch and diffs the result against what is armed: timers that are
// no longer planned are cancelled, new ones are armed, unchanged ones are kept.
type Scheduler struct {
	clock    Clock
	notifier Notifier
	logger   *zap.Logger
	metrics  *Metrics

	mu      sync.Mutex
	inputs  Inputs
	armed   map[timerKey]*armedTimer
	fired   map[timerKey]struct{}
	gen     uint64
	stopped bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// NewScheduler creates a Scheduler with notifications disabled and permission unasked.
func NewScheduler(notifier Notifier, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		clock:    RealClock{},
		notifier: notifier,
		logger:   logger,
		inputs:   Inputs{Permission: model.PermissionDefault},
		armed:    make(map[timerKey]*armedTimer),
		fired:    make(map[timerKey]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync replaces all inputs at once.
func (s *Scheduler) Sync(in Inputs) {
	s.update(func(cur *Inputs) {
		cur.Appointments = slices.Clone(in.Appointments)
		cur.Enabled = in.Enabled
		cur.Permission = in.Permission
	})
}

// SetAppointments replaces the appointment set.
func (s *Scheduler) SetAppointments(apts []model.Appointment) {
	s.update(func(cur *Inputs) { cur.Appointments = slices.Clone(apts) })
}

// SetEnabled records the user's notification preference.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.update(func(cur *Inputs) { cur.Enabled = enabled })
}

// SetPermission records the platform permission state.
func (s *Scheduler) SetPermission(p model.Permission) {
	s.update(func(cur *Inputs) { cur.Permission = p })
}

// SetSettings records the preference and the permission together with a
// single recompute.
func (s *Scheduler) SetSettings(enabled bool, p model.Permission) {
	s.update(func(cur *Inputs) {
		cur.Enabled = enabled
		cur.Permission = p
	})
}

// Inputs returns the current inputs.
func (s *Scheduler) Inputs() Inputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.inputs
	in.Appointments = slices.Clone(in.Appointments)
	return in
}

// Armed returns the armed timers, soonest first.
func (s *Scheduler) Armed() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Timer, 0, len(s.armed))
	for _, a := range s.armed {
		out = append(out, a.timer)
	}
	slices.SortFunc(out, func(a, b Timer) int {
		if c := a.FireAt.Compare(b.FireAt); c != 0 {
			return c
		}
		if a.AppointmentID < b.AppointmentID {
			return -1
		}
		if a.AppointmentID > b.AppointmentID {
			return 1
		}
		return 0
	})
	return out
}

// Stop cancels every armed timer. After Stop nothing fires and input changes are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	for k, a := range s.armed {
		a.stop.Stop()
		delete(s.armed, k)
	}
	s.metrics.setArmed(0)
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) update(mutate func(*Inputs)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	mutate(&s.inputs)
	s.recomputeLocked()
}

func (s *Scheduler) recomputeLocked() {
	now := s.clock.Now()
	plan := Plan(s.inputs.Appointments, now, s.inputs.Enabled, s.inputs.Permission)

	byID := make(map[string]model.Appointment, len(s.inputs.Appointments))
	for _, a := range s.inputs.Appointments {
		byID[a.ID] = a
	}

	want := make(map[timerKey]Timer, len(plan))
	for _, t := range plan {
		want[timerKey{t.AppointmentID, t.FireAt.UnixNano()}] = t
	}

	cancelled := 0
	for k, a := range s.armed {
		if _, ok := want[k]; ok {
			a.appointment = byID[k.appointmentID]
			continue
		}
		a.stop.Stop()
		delete(s.armed, k)
		cancelled++
	}

	armed := 0
	for k, t := range want {
		if _, ok := s.armed[k]; ok {
			continue
		}
		if _, done := s.fired[k]; done {
			continue
		}
		s.gen++
		gen := s.gen
		s.armed[k] = &armedTimer{
			timer:       t,
			appointment: byID[k.appointmentID],
			stop:        s.clock.AfterFunc(t.Delay, func() { s.fire(k, gen) }),
			gen:         gen,
		}
		armed++
	}

	for k := range s.fired {
		if _, ok := byID[k.appointmentID]; !ok {
			delete(s.fired, k)
		}
	}

	s.metrics.setArmed(len(s.armed))
	if armed > 0 || cancelled > 0 {
		s.logger.Info("reminders recomputed",
			zap.Int("armed", armed),
			zap.Int("cancelled", cancelled),
			zap.Int("total", len(s.armed)),
		)
	}
}

func (s *Scheduler) fire(k timerKey, gen uint64) {
	s.mu.Lock()
	a, ok := s.armed[k]
	if !ok || a.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.armed, k)
	s.fired[k] = struct{}{}
	s.metrics.setArmed(len(s.armed))
	s.mu.Unlock()

	s.metrics.incFired()
	r := NewReminder(a.appointment)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.notifier.Notify(ctx, r); err != nil {
		s.metrics.incDispatchFailure()
		s.logger.Warn("reminder dispatch failed",
			zap.String("appointment_id", r.AppointmentID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("reminder dispatched", zap.String("appointment_id", r.AppointmentID))
}
