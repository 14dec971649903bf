// Package domain defines the session model and the logging workflows around it.
package domain

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultLiveName names live sessions finished without an explicit name.
const DefaultLiveName = "Live session"

// Field error messages surfaced for manual entry.
const (
	MsgRequired      = "Required"
	MsgInvalidNumber = "Invalid number"
)

var (
	// ErrInvalidSession indicates the manual entry was rejected.
	ErrInvalidSession = errors.New("invalid session input")
	// ErrNegativeDuration is returned when a live recording reports a negative duration.
	ErrNegativeDuration = errors.New("duration must not be negative")
)

// ValidationError carries per-field messages for a rejected manual entry.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for _, k := range []string{"name", "duration"} {
		if msg, ok := e.Fields[k]; ok {
			keys = append(keys, k+": "+msg)
		}
	}
	return ErrInvalidSession.Error() + " (" + strings.Join(keys, ", ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSession }

// ManualEntryInput is the raw text captured by the manual log form.
type ManualEntryInput struct {
	Name     string `json:"name" validate:"required"`
	Duration string `json:"duration" validate:"required,minutes"`
}

// validMinutes accepts unsigned decimal digits with an optional leading plus sign.
func validMinutes(fl validator.FieldLevel) bool {
	digits := strings.TrimPrefix(fl.Field().String(), "+")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the wall clock used to timestamp sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithDefaultLiveName overrides the name given to unnamed live sessions.
func WithDefaultLiveName(name string) Option {
	return func(s *Service) {
		if strings.TrimSpace(name) != "" {
			s.defaultLiveName = strings.TrimSpace(name)
		}
	}
}

// Service orchestrates session logging.
type Service struct {
	log             *SessionLog
	validate        *validator.Validate
	now             func() time.Time
	defaultLiveName string
}

// NewService constructs a Service writing to log.
func NewService(log *SessionLog, opts ...Option) *Service {
	v := validator.New()
	_ = v.RegisterValidation("minutes", validMinutes)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Service{
		log:             log,
		validate:        v,
		now:             time.Now,
		defaultLiveName: DefaultLiveName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Log exposes the underlying session log for subscribers.
func (s *Service) Log() *SessionLog {
	return s.log
}

// LogManual validates the form input and prepends a manual session.
func (s *Service) LogManual(ctx context.Context, input ManualEntryInput) (*ActivitySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Duration = strings.TrimSpace(input.Duration)

	fields := make(map[string]string)
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "name":
				fields["name"] = MsgRequired
			case "duration":
				fields["duration"] = MsgInvalidNumber
			}
		}
	}

	var minutes int
	if _, bad := fields["duration"]; !bad {
		parsed, err := strconv.Atoi(input.Duration)
		if err != nil {
			fields["duration"] = MsgInvalidNumber
		}
		minutes = parsed
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	session := s.newSession(input.Name, minutes, SourceManual)
	s.log.Prepend(session)
	return &session, nil
}

// RecordLive prepends a session produced by finishing a live tracking session.
func (s *Service) RecordLive(ctx context.Context, name string, durationMin int) (*ActivitySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if durationMin < 0 {
		return nil, ErrNegativeDuration
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultLiveName
	}

	session := s.newSession(name, durationMin, SourceLive)
	s.log.Prepend(session)
	return &session, nil
}

// ListSessions returns a newest-first page of sessions.
func (s *Service) ListSessions(ctx context.Context, cursor *Cursor, limit int) ([]ActivitySession, *Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	items, next := s.log.Page(cursor, limit)
	return items, next, nil
}

func (s *Service) newSession(name string, minutes int, source Source) ActivitySession {
	return ActivitySession{
		ID:          uuid.NewString(),
		Name:        name,
		DurationMin: minutes,
		Timestamp:   time.UnixMilli(s.now().UnixMilli()).UTC(),
		Icon:        ResolveIcon(name),
		Source:      source,
	}
}
