package handlers

import (
	"log"

	"agenthub/internal/models"
	"agenthub/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ChatHandler handles chat session HTTP requests
type ChatHandler struct {
	service *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// CreateSession opens a new chat session for an agent.
// POST /chats/:agent_id
func (h *ChatHandler) CreateSession(c *fiber.Ctx) error {
	// Params are views into fasthttp's reused request buffer. Copy
	// anything that outlives the handler (cache keys, stored ids).
	agentID := utils.CopyString(c.Params("agent_id"))
	if agentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Agent ID is required",
		})
	}

	session, err := h.service.CreateSession(c.Context(), agentID)
	if err != nil {
		log.Printf("❌ Failed to create session for agent %s: %v", agentID, err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// SendMessage runs one conversational turn in a session.
// POST /chats/message/:session_id
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	sessionID := utils.CopyString(c.Params("session_id"))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}

	var req models.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	reply, err := h.service.SendMessage(c.Context(), sessionID, req.Message)
	if err != nil {
		log.Printf("❌ Message failed for session %s: %v", sessionID, err)
		return respondError(c, err)
	}
	return c.JSON(models.SendMessageResponse{Response: reply})
}

// GetHistory returns the full transcript of a session.
// GET /chats/:session_id/history
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := utils.CopyString(c.Params("session_id"))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}

	turns, err := h.service.GetHistory(c.Context(), sessionID)
	if err != nil {
		log.Printf("❌ Failed to load history for session %s: %v", sessionID, err)
		return respondError(c, err)
	}
	return c.JSON(turns)
}

// ListSessions returns all sessions for an agent, most recently active first.
// GET /chats/:agent_id
func (h *ChatHandler) ListSessions(c *fiber.Ctx) error {
	agentID := utils.CopyString(c.Params("agent_id"))
	if agentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Agent ID is required",
		})
	}

	sessions, err := h.service.ListAgentSessions(c.Context(), agentID)
	if err != nil {
		log.Printf("❌ Failed to list sessions for agent %s: %v", agentID, err)
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

// RenameSession changes a session's title.
// PATCH /chats/:session_id/title
func (h *ChatHandler) RenameSession(c *fiber.Ctx) error {
	sessionID := utils.CopyString(c.Params("session_id"))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}

	var req models.RenameSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	session, err := h.service.RenameSession(c.Context(), sessionID, req.Title)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

// DeleteSession removes a session and its transcript.
// DELETE /chats/:session_id
func (h *ChatHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID := utils.CopyString(c.Params("session_id"))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}

	if err := h.service.DeleteSession(c.Context(), sessionID); err != nil {
		log.Printf("❌ Failed to delete session %s: %v", sessionID, err)
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
