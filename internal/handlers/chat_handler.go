package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"meetmatch/internal/services"
)

// ChatHandler serves chats and messages.
type ChatHandler struct {
	chatService    *services.ChatService
	messageService *services.MessageService
	validate       *validator.Validate
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *services.ChatService, messageService *services.MessageService) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		messageService: messageService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the chat routes with the Fiber app.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/create-chat", h.HandleCreateChat)
	router.Get("/get-chats", h.HandleGetChats)
	router.Get("/get-messages", h.HandleGetMessages)
	router.Post("/send-message", h.HandleSendMessage)
}

// CreateChatRequest represents the request body for opening a chat.
type CreateChatRequest struct {
	User1ID string  `json:"user1Id" validate:"required"`
	User2ID string  `json:"user2Id" validate:"required"`
	EventID *string `json:"eventId"`
}

// HandleCreateChat creates the chat of a matched pair or returns the
// existing one.
func (h *ChatHandler) HandleCreateChat(c *fiber.Ctx) error {
	var req CreateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}
	if req.EventID != nil && *req.EventID == "" {
		req.EventID = nil
	}

	chat, existed, err := h.chatService.CreateChat(c.UserContext(), req.User1ID, req.User2ID, req.EventID)
	if err != nil {
		return err
	}

	status, message := fiber.StatusCreated, "Chat created"
	if existed {
		status, message = fiber.StatusOK, "Chat already exists"
	}
	return c.Status(status).JSON(fiber.Map{
		"chat":    chat,
		"existed": existed,
		"message": message,
	})
}

// HandleGetChats lists the chats of userId.
func (h *ChatHandler) HandleGetChats(c *fiber.Ctx) error {
	chats, err := h.chatService.ListChats(c.UserContext(), c.Query("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"chats": chats,
		"total": len(chats),
	})
}

// HandleGetMessages returns one page of chat history and marks the
// counterpart's messages as read.
func (h *ChatHandler) HandleGetMessages(c *fiber.Ctx) error {
	in := services.ListMessagesInput{
		ChatID: c.Query("chatId"),
		UserID: c.Query("userId"),
	}

	if raw := c.Query("limit"); raw != "" {
		limit := c.QueryInt("limit", -1)
		if limit <= 0 {
			return badRequest("invalid_query", "limit must be a positive integer")
		}
		in.Limit = limit
	}
	if raw := c.Query("before"); raw != "" {
		before, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return badRequest("invalid_query", "before must be an RFC 3339 timestamp")
		}
		in.Before = &before
	}

	page, err := h.messageService.ListMessages(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// SendMessageRequest represents the request body of a new message.
type SendMessageRequest struct {
	ChatID   string `json:"chatId" validate:"required"`
	SenderID string `json:"senderId" validate:"required"`
	Content  string `json:"content" validate:"max=4000"`
	TempID   string `json:"temp_id"`
}

// HandleSendMessage appends a message to a chat.
func (h *ChatHandler) HandleSendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid_body", "invalid request body")
	}
	if err := validateStruct(h.validate, req); err != nil {
		return err
	}

	sent, err := h.messageService.SendMessage(c.UserContext(), services.SendMessageInput{
		ChatID:   req.ChatID,
		SenderID: req.SenderID,
		Content:  req.Content,
		TempID:   req.TempID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sent)
}
