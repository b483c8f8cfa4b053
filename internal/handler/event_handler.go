package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "eventboard/internal/errors"
	"eventboard/internal/model"
	"eventboard/internal/service"
)

// EventHandler serves event endpoints for users and admins.
type EventHandler struct {
	svc service.EventService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// CreateEventRequest represents a new event. Date is YYYY-MM-DD.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Hour        *int   `json:"hour"`
	Location    string `json:"location"`
}

// UpdateEventRequest is a partial event update. Omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Hour        *int    `json:"hour"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
}

// EventStatusRequest carries an admin moderation decision.
type EventStatusRequest struct {
	Status string `json:"status"`
}

// EventResponse wraps a single event.
type EventResponse struct {
	Message string       `json:"message,omitempty"`
	Event   *model.Event `json:"event"`
}

// EventsResponse wraps a list of events.
type EventsResponse struct {
	Events []model.Event `json:"events"`
}

// Create godoc
// @Summary Create event
// @Description New events start as pending.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEventRequest true "Event data"
// @Success 201 {object} EventResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.NewValidation("Invalid request body"))
	}

	event, err := h.svc.Create(c.Request().Context(), actor, service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Hour:        req.Hour,
		Location:    req.Location,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, EventResponse{Message: "Event created successfully", Event: event})
}

// ListOwn godoc
// @Summary List own events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EventsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/events [get]
func (h *EventHandler) ListOwn(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	events, err := h.svc.ListOwn(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, EventsResponse{Events: nonNilEvents(events)})
}

// ListAll godoc
// @Summary List all events
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EventsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/events [get]
func (h *EventHandler) ListAll(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	events, err := h.svc.ListAll(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, EventsResponse{Events: nonNilEvents(events)})
}

// Get godoc
// @Summary Get event by id
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, apperrors.ErrEventNotFound)
	if err != nil {
		return respondError(c, err)
	}
	event, err := h.svc.GetByID(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, EventResponse{Event: event})
}

// Update godoc
// @Summary Update event
// @Description Owners may change any field but status; admins may change all fields.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body UpdateEventRequest true "Fields to change"
// @Success 200 {object} EventResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, apperrors.ErrEventNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.NewValidation("Invalid request body"))
	}

	patch := service.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Hour:        req.Hour,
		Location:    req.Location,
	}
	if req.Status != nil {
		status := model.EventStatus(*req.Status)
		patch.Status = &status
	}

	event, err := h.svc.Update(c.Request().Context(), actor, id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, EventResponse{Message: "Event updated successfully", Event: event})
}

// SetStatus godoc
// @Summary Approve or reject event
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body EventStatusRequest true "Pending, Approved or Rejected"
// @Success 200 {object} EventResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/events/{id} [put]
func (h *EventHandler) SetStatus(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, apperrors.ErrEventNotFound)
	if err != nil {
		return respondError(c, err)
	}
	var req EventStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.NewValidation("Invalid request body"))
	}

	event, err := h.svc.SetStatus(c.Request().Context(), actor, id, model.EventStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, EventResponse{Message: "Event status updated", Event: event})
}

// Delete godoc
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, apperrors.ErrEventNotFound)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}

func nonNilEvents(events []model.Event) []model.Event {
	if events == nil {
		return []model.Event{}
	}
	return events
}
