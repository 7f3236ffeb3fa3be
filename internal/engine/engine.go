// Package engine builds and runs conversation engines: one model-bound,
// tool-bound runtime per chat session, backed by a durable checkpoint store
// addressed by thread id.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agenthub/internal/catalog"
	"agenthub/internal/models"
	"agenthub/internal/tools"

	"golang.org/x/time/rate"
)

// CheckpointStore is the durable transcript of record. The engine never
// assumes in-process durability of conversation state.
type CheckpointStore interface {
	AppendTurn(ctx context.Context, threadID string, turns ...models.Turn) error
	LoadTranscript(ctx context.Context, threadID string) ([]models.Turn, error)
}

// Engine turns one user message plus prior context into a model-backed reply.
// The config passed to Invoke is the agent's live configuration, so prompt
// augmentation sees current database schema even though model and tool set
// were frozen at build time.
type Engine interface {
	Invoke(ctx context.Context, threadID, message string, cfg *models.AgentConfig) (string, error)
}

// Factory constructs an Engine from a stored agent configuration.
type Factory interface {
	Build(cfg *models.AgentConfig) (Engine, error)
}

// conversationEngine is the provider-backed Engine implementation.
type conversationEngine struct {
	model       string
	temperature float64
	tools       []*tools.Tool
	registry    *tools.Registry

	store      CheckpointStore
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Invoke loads the thread's transcript, runs the completion loop with the
// engine's bound tools and persists the resulting turns. An empty assistant
// reply is not a failure; a provider failure leaves the transcript untouched.
func (e *conversationEngine) Invoke(ctx context.Context, threadID, message string, cfg *models.AgentConfig) (string, error) {
	transcript, err := e.store.LoadTranscript(ctx, threadID)
	if err != nil {
		return "", err
	}

	messages := make([]map[string]interface{}, 0, len(transcript)+2)
	messages = append(messages, map[string]interface{}{
		"role":    "system",
		"content": systemPrompt(cfg),
	})
	for _, turn := range transcript {
		role := "user"
		if turn.Role == models.RoleAI {
			role = "assistant"
		}
		messages = append(messages, map[string]interface{}{
			"role":    role,
			"content": turn.Content,
		})
	}
	messages = append(messages, map[string]interface{}{
		"role":    "user",
		"content": message,
	})

	inv := &tools.Invocation{
		SessionID: threadID,
		Database:  cfg.DatabaseConfig,
	}

	reply, err := e.runCompletionLoop(ctx, messages, tools.Definitions(e.tools), inv)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	turns := []models.Turn{{Role: models.RoleUser, Content: message, Timestamp: now}}
	if reply != "" {
		turns = append(turns, models.Turn{Role: models.RoleAI, Content: reply, Timestamp: now})
	}
	if err := e.store.AppendTurn(ctx, threadID, turns...); err != nil {
		return "", err
	}

	return reply, nil
}

// systemPrompt returns the base prompt, extended with a directive naming the
// configured database and embedding the stored schema snapshot when the agent
// has a database binding. Read per invocation so schema edits take effect
// without an engine rebuild.
func systemPrompt(cfg *models.AgentConfig) string {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = catalog.DefaultPrompt
	}
	if cfg.DatabaseConfig == nil {
		return prompt
	}

	schemaJSON, err := json.Marshal(cfg.DatabaseConfig.Schema)
	if err != nil {
		return prompt
	}
	return fmt.Sprintf(
		"%s\n\nUse the schema to query the %s database with the enabled query tool. [DB Schema: %s]",
		prompt, cfg.DatabaseConfig.DBType, schemaJSON,
	)
}
