package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventStatus represents the moderation status of an event.
type EventStatus string

const (
	EventStatusPending  EventStatus = "Pending"
	EventStatusApproved EventStatus = "Approved"
	EventStatusRejected EventStatus = "Rejected"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected:
		return true
	}
	return false
}

// DateLayout is the wire format of Event.Date.
const DateLayout = "2006-01-02"

// Event represents a community-submitted event.
type Event struct {
	ID          uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string      `json:"title" gorm:"size:255;not null"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Date        time.Time   `json:"date" gorm:"type:date;not null"`
	Hour        int         `json:"hour" gorm:"not null;default:0"`
	Location    string      `json:"location" gorm:"size:255;not null"`
	Status      EventStatus `json:"status" gorm:"type:varchar(20);not null;default:'Pending';index"`
	CreatedBy   uuid.UUID   `json:"created_by" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Relations
	Creator User `json:"-" gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT"`
}

// BeforeCreate sets UUID before creating the record.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ParseEventDate accepts a calendar date or an RFC 3339 timestamp and returns
// the date at midnight UTC.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
