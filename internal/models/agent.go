package models

import (
	"time"

	"agenthub/internal/catalog"

	"github.com/google/uuid"
)

// CollectionSchema describes one collection or table of an external database:
// its name and a field-name to type-name mapping.
type CollectionSchema struct {
	Name   string            `bson:"name" json:"name"`
	Fields map[string]string `bson:"fields" json:"fields"`
}

// DatabaseConfig wires an agent to one external database for its query tool.
// Schema is a cached snapshot of the database's structure, captured at
// configuration time and injected into the system prompt.
type DatabaseConfig struct {
	DBType           string             `bson:"dbType" json:"db_type"`
	ConnectionString string             `bson:"connectionString" json:"connection_string"`
	DBName           string             `bson:"dbName,omitempty" json:"db_name,omitempty"`
	Schema           []CollectionSchema `bson:"schema,omitempty" json:"schema,omitempty"`
}

// AgentConfig is the behavioural configuration of an agent: which model
// answers, with what prompt and sampling temperature, which tools are
// enabled and what database, if any, the query tools may reach.
type AgentConfig struct {
	ModelProvider  string          `bson:"modelProvider" json:"model_provider"`
	Model          string          `bson:"model" json:"model"`
	Temperature    *float64        `bson:"temperature" json:"temperature"`
	Prompt         string          `bson:"prompt" json:"prompt"`
	Tools          []string        `bson:"tools,omitempty" json:"tools,omitempty"`
	DatabaseConfig *DatabaseConfig `bson:"databaseConfig,omitempty" json:"database_config,omitempty"`
}

// Normalize fills catalogue defaults into unset fields. Temperature is a
// pointer so that an explicit 0.0 is kept, only an absent value defaults.
func (c *AgentConfig) Normalize() {
	if c.ModelProvider == "" {
		c.ModelProvider = catalog.DefaultProvider
	}
	if c.Prompt == "" {
		c.Prompt = catalog.DefaultPrompt
	}
	if c.Temperature == nil {
		t := float64(catalog.DefaultTemperature)
		c.Temperature = &t
	}
}

// Agent is a stored agent record.
type Agent struct {
	ID          string      `bson:"_id" json:"id"`
	OwnerID     string      `bson:"ownerId" json:"owner_id"`
	Name        string      `bson:"name" json:"name"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`
	Config      AgentConfig `bson:"config" json:"config"`
	CreatedAt   time.Time   `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time   `bson:"updatedAt" json:"updated_at"`
}

// NewAgentID returns a fresh agent identifier.
func NewAgentID() string {
	return uuid.NewString()
}

// CreateAgentRequest is the payload for creating or replacing an agent.
type CreateAgentRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Config      AgentConfig `json:"config"`
}

// AgentUpdate carries the mutable fields of an agent for a store update.
type AgentUpdate struct {
	Name        string
	Description string
	Config      AgentConfig
	UpdatedAt   time.Time
}
