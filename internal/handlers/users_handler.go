package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"meetmatch/internal/services"
)

// UserHandler handles HTTP requests for accounts and profiles.
type UserHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the account routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/auth", h.HandleAuthenticate)

	users := router.Group("/users")
	users.Post("/", h.HandleRegister)
	users.Get("/:id", h.HandleGetProfile)
	users.Patch("/:id", h.HandleUpdateProfile)
	users.Post("/:id/password", h.HandleChangePassword)
}

// RegisterRequest represents the request body for sign-up.
type RegisterRequest struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required"`
	AvatarURL string   `json:"avatar_url"`
	Age       *int     `json:"age" validate:"omitempty,min=18,max=120"`
	Gender    string   `json:"gender"`
	Bio       string   `json:"bio" validate:"max=1000"`
	Interests []string `json:"interests"`
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), services.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		AvatarURL: req.AvatarURL,
		Age:       req.Age,
		Gender:    req.Gender,
		Bio:       req.Bio,
		Interests: req.Interests,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// LoginRequest represents the request body for authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleAuthenticate checks credentials and returns the user.
func (h *UserHandler) HandleAuthenticate(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	user, err := h.authService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleGetProfile returns a public profile.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.authService.GetProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateProfileRequest lists the editable profile fields. Omitted fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=100"`
	AvatarURL *string  `json:"avatar_url"`
	Age       *int     `json:"age" validate:"omitempty,min=18,max=120"`
	Gender    *string  `json:"gender"`
	Bio       *string  `json:"bio" validate:"omitempty,max=1000"`
	Interests []string `json:"interests"`
}

// HandleUpdateProfile applies a partial profile update.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	profile, err := h.authService.UpdateProfile(c.UserContext(), c.Params("id"), services.ProfileUpdate{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Age:       req.Age,
		Gender:    req.Gender,
		Bio:       req.Bio,
		Interests: req.Interests,
	})
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// HandleChangePassword replaces the password of a user.
func (h *UserHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.UserContext(), c.Params("id"), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
