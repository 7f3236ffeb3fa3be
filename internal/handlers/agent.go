package handlers

import (
	"log"

	"agenthub/internal/catalog"
	"agenthub/internal/models"
	"agenthub/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// AgentHandler handles agent-related HTTP requests
type AgentHandler struct {
	service *services.AgentService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(service *services.AgentService) *AgentHandler {
	return &AgentHandler{service: service}
}

// ownerID returns the principal set by the identity middleware.
func ownerID(c *fiber.Ctx) string {
	owner, _ := c.Locals("owner_id").(string)
	return owner
}

// Create creates a new agent with its configuration.
// POST /agents
func (h *AgentHandler) Create(c *fiber.Ctx) error {
	var req models.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	agent, err := h.service.CreateAgent(c.Context(), ownerID(c), req)
	if err != nil {
		log.Printf("❌ Failed to create agent: %v", err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(agent)
}

// List returns all agents owned by the principal.
// GET /agents
func (h *AgentHandler) List(c *fiber.Ctx) error {
	agents, err := h.service.ListAgents(c.Context(), ownerID(c))
	if err != nil {
		log.Printf("❌ Failed to list agents: %v", err)
		return respondError(c, err)
	}
	return c.JSON(agents)
}

// Get returns one agent by ID.
// GET /agents/:id
func (h *AgentHandler) Get(c *fiber.Ctx) error {
	agentID := utils.CopyString(c.Params("id"))
	if agentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Agent ID is required",
		})
	}

	agent, err := h.service.GetAgent(c.Context(), agentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(agent)
}

// Update replaces an existing agent's name, description and config.
// PUT /agents/:id
func (h *AgentHandler) Update(c *fiber.Ctx) error {
	agentID := utils.CopyString(c.Params("id"))
	if agentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Agent ID is required",
		})
	}

	var req models.CreateAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	agent, err := h.service.UpdateAgent(c.Context(), agentID, req)
	if err != nil {
		log.Printf("❌ Failed to update agent %s: %v", agentID, err)
		return respondError(c, err)
	}
	return c.JSON(agent)
}

// Delete removes an agent by ID. Idempotent.
// DELETE /agents/:id
func (h *AgentHandler) Delete(c *fiber.Ctx) error {
	agentID := utils.CopyString(c.Params("id"))
	if agentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Agent ID is required",
		})
	}

	if err := h.service.DeleteAgent(c.Context(), agentID); err != nil {
		log.Printf("❌ Failed to delete agent %s: %v", agentID, err)
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ConfigOptions returns the capability catalogue, or just the model list for
// one provider when ?provider= is given.
// GET /agents/config/options
func (h *AgentHandler) ConfigOptions(c *fiber.Ctx) error {
	provider := c.Query("provider")
	if provider != "" {
		return c.JSON(fiber.Map{
			"provider": provider,
			"models":   catalog.ModelsFor(provider),
		})
	}
	return c.JSON(catalog.Spec())
}
