package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventboard/internal/model"
)

// EventRepository defines event persistence operations.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	FindByCreator(ctx context.Context, userID uuid.UUID) ([]model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	CountByCreator(ctx context.Context, userID uuid.UUID) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create creates a new event.
func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit("Creator").Create(event).Error
}

// Update writes the mutable columns of an event. created_by is never written.
func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Model(event).
		Select("title", "description", "date", "hour", "location", "status", "updated_at").
		Updates(event).Error
}

// UpdateStatus sets the status column of a single event.
func (r *eventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows when the value is unchanged.
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// Delete removes an event.
func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID finds an event by ID.
func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByCreator lists the events created by a user.
func (r *eventRepository) FindByCreator(ctx context.Context, userID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Where("created_by = ?", userID).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// List lists all events.
func (r *eventRepository) List(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountByCreator counts the events created by a user.
func (r *eventRepository) CountByCreator(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Event{}).Where("created_by = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
