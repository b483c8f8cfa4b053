package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eventboard/internal/auth"
	apperrors "eventboard/internal/errors"
	"eventboard/internal/metrics"
	"eventboard/internal/model"
	"eventboard/internal/repository"
	"eventboard/internal/sanitize"
)

const requiredEventFields = "All fields (title, description, date, location) are required"

// EventInput carries the fields of a new event.
type EventInput struct {
	Title       string
	Description string
	Date        string
	Location    string
	Hour        *int
}

// EventPatch lists the event fields the caller intends to change. Nil means
// "leave unchanged"; a non-nil zero value is applied as given.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Location    *string
	Hour        *int
	Status      *model.EventStatus
}

// EventService handles events and their ownership rules.
type EventService interface {
	Create(ctx context.Context, actor auth.Identity, in EventInput) (*model.Event, error)
	ListOwn(ctx context.Context, actor auth.Identity) ([]model.Event, error)
	ListAll(ctx context.Context, actor auth.Identity) ([]model.Event, error)
	GetByID(ctx context.Context, actor auth.Identity, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, actor auth.Identity, id uuid.UUID, patch EventPatch) (*model.Event, error)
	SetStatus(ctx context.Context, actor auth.Identity, id uuid.UUID, status model.EventStatus) (*model.Event, error)
	Delete(ctx context.Context, actor auth.Identity, id uuid.UUID) error
}

type eventService struct {
	events repository.EventRepository
}

// NewEventService creates a new event service.
func NewEventService(events repository.EventRepository) EventService {
	return &eventService{events: events}
}

// Create stores a new Pending event owned by actor.
func (s *eventService) Create(ctx context.Context, actor auth.Identity, in EventInput) (*model.Event, error) {
	if actor.UserID == uuid.Nil {
		return nil, apperrors.ErrMissingToken
	}

	title := sanitize.Text(in.Title)
	description := sanitize.Text(in.Description)
	location := sanitize.Text(in.Location)
	if title == "" || description == "" || location == "" || strings.TrimSpace(in.Date) == "" {
		return nil, apperrors.NewValidation(requiredEventFields)
	}

	date, err := model.ParseEventDate(in.Date)
	if err != nil {
		return nil, apperrors.NewValidation("Invalid date, expected YYYY-MM-DD")
	}

	hour := 0
	if in.Hour != nil {
		if err := validateHour(*in.Hour); err != nil {
			return nil, err
		}
		hour = *in.Hour
	}

	event := &model.Event{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Date:        date,
		Hour:        hour,
		Location:    location,
		Status:      model.EventStatusPending,
		CreatedBy:   actor.UserID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("event_id", event.ID.String()).Msg("event created")
	return event, nil
}

func validateHour(hour int) error {
	if hour < 0 || hour > 23 {
		return apperrors.NewValidation("Hour must be between 0 and 23")
	}
	return nil
}

// ListOwn returns the events created by actor.
func (s *eventService) ListOwn(ctx context.Context, actor auth.Identity) ([]model.Event, error) {
	events, err := s.events.FindByCreator(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list own events: %w", err)
	}
	return events, nil
}

// ListAll returns every event. Admin only.
func (s *eventService) ListAll(ctx context.Context, actor auth.Identity) ([]model.Event, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) find(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return event, nil
}

// findOwned loads an event and checks that actor is its creator or an admin.
func (s *eventService) findOwned(ctx context.Context, actor auth.Identity, id uuid.UUID) (*model.Event, error) {
	event, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(event.CreatedBy) && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return event, nil
}

// GetByID returns an event visible to its creator or an admin.
func (s *eventService) GetByID(ctx context.Context, actor auth.Identity, id uuid.UUID) (*model.Event, error) {
	return s.findOwned(ctx, actor, id)
}

// Update applies patch to an event owned by actor. Only admins may change
// the status through this path.
func (s *eventService) Update(ctx context.Context, actor auth.Identity, id uuid.UUID, patch EventPatch) (*model.Event, error) {
	event, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if event.Title = sanitize.Text(*patch.Title); event.Title == "" {
			return nil, apperrors.NewValidation("Title cannot be empty")
		}
	}
	if patch.Description != nil {
		if event.Description = sanitize.Text(*patch.Description); event.Description == "" {
			return nil, apperrors.NewValidation("Description cannot be empty")
		}
	}
	if patch.Location != nil {
		if event.Location = sanitize.Text(*patch.Location); event.Location == "" {
			return nil, apperrors.NewValidation("Location cannot be empty")
		}
	}
	if patch.Date != nil {
		date, err := model.ParseEventDate(*patch.Date)
		if err != nil {
			return nil, apperrors.NewValidation("Invalid date, expected YYYY-MM-DD")
		}
		event.Date = date
	}
	if patch.Hour != nil {
		if err := validateHour(*patch.Hour); err != nil {
			return nil, err
		}
		event.Hour = *patch.Hour
	}
	if patch.Status != nil {
		if !actor.IsAdmin() {
			return nil, apperrors.ErrForbidden
		}
		if !patch.Status.Valid() {
			return nil, apperrors.NewValidation("Invalid status")
		}
		event.Status = *patch.Status
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("event_id", event.ID.String()).Msg("event updated")
	return event, nil
}

// SetStatus records an admin moderation decision. Repeated calls overwrite.
func (s *eventService) SetStatus(ctx context.Context, actor auth.Identity, id uuid.UUID, status model.EventStatus) (*model.Event, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	event, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return nil, apperrors.NewValidation("Status is required")
	}
	if !status.Valid() {
		return nil, apperrors.NewValidation("Invalid status")
	}

	if err := s.events.UpdateStatus(ctx, event.ID, status); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("update event status: %w", err)
	}
	event.Status = status
	metrics.EventStatusChanges.WithLabelValues(string(status)).Inc()

	zerolog.Ctx(ctx).Info().
		Str("event_id", event.ID.String()).
		Str("status", string(status)).
		Msg("event status changed")
	return event, nil
}

// Delete removes an event owned by actor, or any event for an admin.
func (s *eventService) Delete(ctx context.Context, actor auth.Identity, id uuid.UUID) error {
	event, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, event.ID); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("event_id", event.ID.String()).Msg("event deleted")
	return nil
}
