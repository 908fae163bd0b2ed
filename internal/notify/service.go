package notify

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"healthdash/internal/model"
	"healthdash/internal/reminder"
	"healthdash/internal/repository"
)

// Prompter asks the user for the platform notification permission.
type Prompter interface {
	RequestPermission(ctx context.Context) (model.Permission, error)
}

// Scheduler is the part of reminder.Scheduler the settings drive.
type Scheduler interface {
	SetSettings(enabled bool, p model.Permission)
	Armed() []reminder.Timer
}

// Status is the notification state shown on the dashboard.
type Status struct {
	Enabled    bool             `json:"enabled"`
	Permission model.Permission `json:"permission"`
	Message    string           `json:"message"`
	Armed      []reminder.Timer `json:"armed"`
}

// Service owns the notification preference and the permission state. Both are
// persisted and mirrored into the scheduler.
type Service struct {
	settings  repository.SettingsRepository
	scheduler Scheduler
	prompter  Prompter
	log       *zap.Logger

	toggleMu sync.Mutex // serializes changes, including a pending prompt

	mu         sync.RWMutex
	enabled    bool
	permission model.Permission
}

// NewService wires the settings use case.
func NewService(settings repository.SettingsRepository, scheduler Scheduler, prompter Prompter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		settings:   settings,
		scheduler:  scheduler,
		prompter:   prompter,
		log:        log.With(zap.String("component", "notifications")),
		permission: model.PermissionDefault,
	}
}

// Restore loads the persisted settings into the scheduler. Unknown values fall back to
// the defaults (disabled, not asked).
func (s *Service) Restore(ctx context.Context) error {
	enabled, err := repository.Load(ctx, s.settings, repository.KeyNotificationsEnabled, false)
	if err != nil {
		return fmt.Errorf("load %s: %w", repository.KeyNotificationsEnabled, err)
	}
	raw, err := repository.Load(ctx, s.settings, repository.KeyNotificationPermission, string(model.PermissionDefault))
	if err != nil {
		return fmt.Errorf("load %s: %w", repository.KeyNotificationPermission, err)
	}
	perm, err := model.ParsePermission(raw)
	if err != nil {
		s.log.Warn("ignoring stored permission", zap.Error(err))
		perm = model.PermissionDefault
	}

	s.apply(enabled, perm)
	s.log.Info("notification settings restored",
		zap.Bool("enabled", enabled),
		zap.String("permission", string(perm)),
	)
	return nil
}

// SetEnabled changes the user preference. Enabling while the permission was never asked
// prompts for it first; the preference only sticks when the permission ends up granted.
func (s *Service) SetEnabled(ctx context.Context, enabled bool) (Status, error) {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	perm := s.currentPermission()
	if enabled && perm == model.PermissionDefault && s.prompter != nil {
		p, err := s.prompter.RequestPermission(ctx)
		if err != nil {
			return s.Status(), fmt.Errorf("request permission: %w", err)
		}
		perm = p
		if err := repository.Save(ctx, s.settings, repository.KeyNotificationPermission, string(perm)); err != nil {
			return s.Status(), err
		}
	}
	if enabled && perm != model.PermissionGranted {
		s.log.Info("notifications not enabled", zap.String("permission", string(perm)))
		enabled = false
	}

	if err := repository.Save(ctx, s.settings, repository.KeyNotificationsEnabled, enabled); err != nil {
		return s.Status(), err
	}
	s.apply(enabled, perm)
	return s.Status(), nil
}

// ReportPermission records the platform permission observed by the dashboard.
func (s *Service) ReportPermission(ctx context.Context, p model.Permission) (Status, error) {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	if err := repository.Save(ctx, s.settings, repository.KeyNotificationPermission, string(p)); err != nil {
		return s.Status(), err
	}
	s.mu.RLock()
	enabled := s.enabled
	s.mu.RUnlock()
	s.apply(enabled, p)
	return s.Status(), nil
}

// Status returns the current state with its display message.
func (s *Service) Status() Status {
	s.mu.RLock()
	enabled, perm := s.enabled, s.permission
	s.mu.RUnlock()

	armed := s.scheduler.Armed()
	if armed == nil {
		armed = []reminder.Timer{}
	}
	return Status{
		Enabled:    enabled,
		Permission: perm,
		Message:    StatusMessage(enabled, perm),
		Armed:      armed,
	}
}

// StatusMessage explains the combined state to the user.
func StatusMessage(enabled bool, perm model.Permission) string {
	switch {
	case perm == model.PermissionDenied:
		return "Notifications are blocked. Change this in your browser settings."
	case perm == model.PermissionDefault && !enabled:
		return "Enable to receive appointment reminders."
	case perm == model.PermissionGranted && enabled:
		return "Notifications are enabled."
	default:
		return "You need to allow notifications in your browser."
	}
}

func (s *Service) currentPermission() model.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}

func (s *Service) apply(enabled bool, perm model.Permission) {
	s.mu.Lock()
	s.enabled = enabled
	s.permission = perm
	s.mu.Unlock()

	s.scheduler.SetSettings(enabled, perm)
}
