package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rollcall/internal/participant"
	"rollcall/internal/platform/metrics"
	dErrors "rollcall/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/service_mocks.go -package=mocks

// Store is the durable append-only participant collection.
type Store interface {
	Append(ctx context.Context, rec participant.Record) error
	ListAll(ctx context.Context) ([]participant.Record, error)
}

// Broadcaster pushes a freshly persisted record to connected viewers.
type Broadcaster interface {
	Broadcast(rec participant.Record)
}

// Service is the only writer path into the participant collection. It runs
// validation, persists the record, and only then hands it to the broadcaster,
// so every record a viewer receives is recoverable from the store.
type Service struct {
	store   Store
	notify  Broadcaster
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	clock   func() time.Time

	// lastCreated guards the invariant that createdAt never decreases across
	// accepted records even if the wall clock steps backwards.
	mu          sync.Mutex
	lastCreated time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, notify Broadcaster, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		notify: notify,
		logger: logger,
		tracer: otel.Tracer("rollcall/registration"),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates sub and, when accepted, persists and broadcasts exactly
// one record. A validation failure returns a coded error carrying the full
// field-error map and has no side effects. A storage failure returns an
// internal error and nothing is broadcast.
func (s *Service) Register(ctx context.Context, sub participant.Submission) (participant.Record, error) {
	ctx, span := s.tracer.Start(ctx, "registration.register")
	defer span.End()

	if fieldErrs := participant.Validate(sub); len(fieldErrs) > 0 {
		if s.metrics != nil {
			s.metrics.ValidationFailures.Inc()
		}
		span.SetAttributes(attribute.Int("validation.failures", len(fieldErrs)))
		return participant.Record{}, dErrors.NewValidation(fieldErrs)
	}

	rec := s.buildRecord(sub)

	if err := s.store.Append(ctx, rec); err != nil {
		if s.metrics != nil {
			s.metrics.StorageFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "failed to persist participant",
			"participant_id", rec.ID,
			"error", err,
		)
		return participant.Record{}, fmt.Errorf("persist participant: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RegistrationsAccepted.Inc()
	}
	span.SetAttributes(attribute.String("participant.id", rec.ID))

	// Broadcast strictly after the durable write succeeds.
	s.notify.Broadcast(rec)

	s.logger.InfoContext(ctx, "participant registered",
		"participant_id", rec.ID,
		"role", string(rec.Role),
	)
	return rec, nil
}

// ListAll returns every stored record in append order.
func (s *Service) ListAll(ctx context.Context) ([]participant.Record, error) {
	ctx, span := s.tracer.Start(ctx, "registration.list_all")
	defer span.End()

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return records, nil
}

// buildRecord fills only the variable field group selected by the role and
// leaves the other group empty, which downstream consumers rely on.
func (s *Service) buildRecord(sub participant.Submission) participant.Record {
	rec := participant.Record{
		ID:        uuid.NewString(),
		FullName:  strings.TrimSpace(sub.FullName),
		Email:     strings.TrimSpace(sub.Email),
		Phone:     strings.TrimSpace(sub.Phone),
		Role:      participant.Role(sub.Role),
		CreatedAt: s.stampCreatedAt(),
	}

	switch rec.Role {
	case participant.RoleWorkingProfessional:
		rec.CompanyName = strings.TrimSpace(sub.CompanyName)
		years := mustInt(sub.YearsOfExperience)
		rec.YearsOfExperience = &years
	case participant.RoleStudent:
		rec.Department = strings.TrimSpace(sub.Department)
		year := mustInt(sub.CurrentYear)
		rec.CurrentYear = &year
	}
	return rec
}

func (s *Service) stampCreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	if now.Before(s.lastCreated) {
		now = s.lastCreated
	}
	s.lastCreated = now
	return now
}

// mustInt re-parses a numeric field that validation already accepted.
func mustInt(v any) int {
	n, _ := participant.ParseIntField(v)
	return n
}
