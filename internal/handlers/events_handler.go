package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"meetmatch/internal/services"
)

// EventHandler handles HTTP requests for the event catalog.
type EventHandler struct {
	eventService *services.EventService
	validate     *validator.Validate
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the event routes with the Fiber app.
func (h *EventHandler) RegisterRoutes(router fiber.Router) {
	events := router.Group("/events")
	events.Get("/", h.HandleListEvents)
	events.Post("/", h.HandleCreateEvent)
	events.Get("/:id", h.HandleGetEvent)
	events.Post("/:id/participants", h.HandleJoinEvent)
	events.Get("/:id/participants", h.HandleListParticipants)
}

// HandleListEvents returns every event, soonest first.
func (h *EventHandler) HandleListEvents(c *fiber.Ctx) error {
	events, err := h.eventService.ListEvents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(events)
}

// HandleGetEvent returns one event.
func (h *EventHandler) HandleGetEvent(c *fiber.Ctx) error {
	event, err := h.eventService.GetEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(event)
}

// CreateEventRequest represents the request body for a new event.
type CreateEventRequest struct {
	Title        string    `json:"title" validate:"required,max=100"`
	Category     string    `json:"category" validate:"required_without=Categories"`
	Categories   []string  `json:"categories"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	CoverVariant string    `json:"cover_variant"`
	CustomCover  string    `json:"custom_cover" validate:"omitempty,max=512"`
	Description  string    `json:"description"`
	AuthorID     string    `json:"author_id" validate:"required"`
}

// HandleCreateEvent validates and stores a new event.
func (h *EventHandler) HandleCreateEvent(c *fiber.Ctx) error {
	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	event, err := h.eventService.CreateEvent(c.UserContext(), services.CreateEventInput{
		Title:        req.Title,
		Category:     req.Category,
		Categories:   req.Categories,
		StartsAt:     req.StartsAt,
		CoverVariant: req.CoverVariant,
		CustomCover:  req.CustomCover,
		Description:  req.Description,
		AuthorID:     req.AuthorID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// JoinEventRequest represents the request body for joining an event.
type JoinEventRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// HandleJoinEvent registers a participant. Repeated joins answer 200.
func (h *EventHandler) HandleJoinEvent(c *fiber.Ctx) error {
	var req JoinEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	eventID := c.Params("id")
	joined, err := h.eventService.JoinEvent(c.UserContext(), eventID, req.UserID)
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if joined {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"event_id": eventID,
		"user_id":  req.UserID,
		"joined":   joined,
	})
}

// HandleListParticipants returns the profiles registered for an event.
func (h *EventHandler) HandleListParticipants(c *fiber.Ctx) error {
	profiles, err := h.eventService.ListParticipants(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(profiles)
}
