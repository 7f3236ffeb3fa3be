package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"agenthub/internal/apperr"
	"agenthub/internal/catalog"
	"agenthub/internal/models"
)

// AgentStore is the persistence boundary for agent records.
type AgentStore interface {
	Insert(ctx context.Context, agent *models.Agent) error
	GetByID(ctx context.Context, agentID string) (*models.Agent, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Agent, error)
	Update(ctx context.Context, agentID string, upd models.AgentUpdate) error
	Delete(ctx context.Context, agentID string) error
}

// AgentService validates and orchestrates agent CRUD against the capability
// catalogue and the agent store.
type AgentService struct {
	agents AgentStore
}

// NewAgentService creates a new agent service
func NewAgentService(agents AgentStore) *AgentService {
	return &AgentService{agents: agents}
}

// CreateAgent validates the config against the catalogue, assigns a fresh id
// and timestamp, persists the agent and returns the stored record.
func (s *AgentService) CreateAgent(ctx context.Context, ownerID string, req models.CreateAgentRequest) (*models.Agent, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}

	cfg := req.Config
	cfg.Normalize()
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	agent := &models.Agent{
		ID:          models.NewAgentID(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Config:      cfg,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.agents.Insert(ctx, agent); err != nil {
		return nil, err
	}

	log.Printf("🤖 [AGENT] Created agent %s (%s / %s) for owner %s", agent.ID, cfg.ModelProvider, cfg.Model, ownerID)
	return agent, nil
}

// GetAgent fetches one agent by id. A missing agent yields a NotFoundError.
func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	return s.agents.GetByID(ctx, agentID)
}

// ListAgents fetches all agents belonging to a principal, newest first.
func (s *AgentService) ListAgents(ctx context.Context, ownerID string) ([]models.Agent, error) {
	return s.agents.ListByOwner(ctx, ownerID)
}

// UpdateAgent replaces the mutable fields of an existing agent and returns
// the freshly reloaded record, so staleness from concurrent writers is
// visible to the caller. ID, owner and creation timestamp never change.
func (s *AgentService) UpdateAgent(ctx context.Context, agentID string, req models.CreateAgentRequest) (*models.Agent, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}

	cfg := req.Config
	cfg.Normalize()
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	upd := models.AgentUpdate{
		Name:        req.Name,
		Description: req.Description,
		Config:      cfg,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.agents.Update(ctx, agentID, upd); err != nil {
		return nil, err
	}

	// Read-after-write: return the stored record, not the in-memory patch
	return s.agents.GetByID(ctx, agentID)
}

// DeleteAgent removes an agent. Idempotent: deleting a non-existent id is not
// an error. Sessions referencing the agent are left behind and fail at their
// next message turn.
func (s *AgentService) DeleteAgent(ctx context.Context, agentID string) error {
	return s.agents.Delete(ctx, agentID)
}

// validateConfig checks a normalized config against the capability catalogue.
func validateConfig(cfg *models.AgentConfig) error {
	if !catalog.IsProvider(cfg.ModelProvider) {
		return apperr.Validation("model_provider",
			fmt.Sprintf("unknown provider %q, expected one of %v", cfg.ModelProvider, catalog.Providers()))
	}
	if !catalog.ModelAllowed(cfg.ModelProvider, cfg.Model) {
		return apperr.Validation("model",
			fmt.Sprintf("model %q is not available for provider %q", cfg.Model, cfg.ModelProvider))
	}
	if t := cfg.Temperature; t == nil || *t < catalog.TemperatureMin || *t > catalog.TemperatureMax {
		return apperr.Validation("temperature",
			fmt.Sprintf("must be between %v and %v", catalog.TemperatureMin, catalog.TemperatureMax))
	}
	for _, tool := range cfg.Tools {
		if !catalog.IsTool(tool) {
			return apperr.Validation("tools", fmt.Sprintf("unknown tool %q", tool))
		}
	}

	if db := cfg.DatabaseConfig; db != nil {
		if !catalog.IsDatabaseType(db.DBType) {
			return apperr.Validation("database_config.db_type",
				fmt.Sprintf("unknown database type %q, expected one of %v", db.DBType, catalog.DatabaseTypes()))
		}
		if db.ConnectionString == "" {
			return apperr.Validation("database_config.connection_string", "must not be empty")
		}
		if db.DBType == catalog.DatabaseMongoDB && db.DBName == "" {
			return apperr.Validation("database_config.db_name", "required for db_type 'mongodb'")
		}
	}

	return nil
}
