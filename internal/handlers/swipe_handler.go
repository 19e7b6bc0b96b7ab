package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"meetmatch/internal/models"
	"meetmatch/internal/services"
)

// SwipeHandler serves the swipe endpoint and the candidate feed.
type SwipeHandler struct {
	matchService *services.MatchService
	feedService  *services.FeedService
	validate     *validator.Validate
}

// NewSwipeHandler creates a new SwipeHandler.
func NewSwipeHandler(matchService *services.MatchService, feedService *services.FeedService) *SwipeHandler {
	return &SwipeHandler{
		matchService: matchService,
		feedService:  feedService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the swipe routes with the Fiber app.
func (h *SwipeHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/swipe", h.HandleSwipe)
	router.Get("/get-profiles", h.HandleGetProfiles)
}

// SwipeRequest represents the request body of a swipe.
type SwipeRequest struct {
	SwiperID  string  `json:"swiperId" validate:"required"`
	TargetID  string  `json:"targetId" validate:"required"`
	Direction string  `json:"direction" validate:"required"`
	EventID   *string `json:"eventId"`
}

// SwipeResponse reports the stored swipe and the match outcome.
type SwipeResponse struct {
	Swipe *models.Swipe `json:"swipe"`
	Match bool          `json:"match"`
	Chat  *models.Chat  `json:"chat"`
}

// HandleSwipe records a swipe and reports whether it completed a match.
func (h *SwipeHandler) HandleSwipe(c *fiber.Ctx) error {
	var req SwipeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}
	if req.EventID != nil && *req.EventID == "" {
		req.EventID = nil
	}

	result, err := h.matchService.RecordSwipe(c.UserContext(), services.SwipeInput{
		SwiperID:  req.SwiperID,
		TargetID:  req.TargetID,
		Direction: req.Direction,
		EventID:   req.EventID,
	})
	if err != nil {
		return err
	}
	return c.JSON(SwipeResponse{Swipe: result.Swipe, Match: result.Match, Chat: result.Chat})
}

// HandleGetProfiles returns swipe candidates for currentUserId.
func (h *SwipeHandler) HandleGetProfiles(c *fiber.Ctx) error {
	minAge, err := optionalInt(c, "minAge")
	if err != nil {
		return err
	}
	maxAge, err := optionalInt(c, "maxAge")
	if err != nil {
		return err
	}

	profiles, err := h.feedService.GetProfiles(c.UserContext(), services.FeedQuery{
		CurrentUserID: c.Query("currentUserId"),
		EventID:       c.Query("eventId"),
		Gender:        c.Query("gender"),
		MinAge:        minAge,
		MaxAge:        maxAge,
		Interests:     c.Query("interests"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"profiles": profiles})
}

func optionalInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, badRequest("invalid_query", key+" must be a non-negative integer")
	}
	return &n, nil
}
