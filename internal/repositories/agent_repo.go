package repositories

import (
	"context"
	"errors"

	"agenthub/internal/apperr"
	"agenthub/internal/database"
	"agenthub/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AgentRepository persists agent records in the agents collection.
type AgentRepository struct {
	collection *mongo.Collection
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *database.MongoDB) *AgentRepository {
	return &AgentRepository{
		collection: db.Collection(database.CollectionAgents),
	}
}

// Insert stores a new agent document.
func (r *AgentRepository) Insert(ctx context.Context, agent *models.Agent) error {
	if _, err := r.collection.InsertOne(ctx, agent); err != nil {
		return apperr.Persistence("insert agent", err)
	}
	return nil
}

// GetByID retrieves an agent by its ID. A missing agent yields
// a NotFoundError.
func (r *AgentRepository) GetByID(ctx context.Context, agentID string) (*models.Agent, error) {
	var agent models.Agent
	err := r.collection.FindOne(ctx, bson.M{"_id": agentID}).Decode(&agent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("agent")
	}
	if err != nil {
		return nil, apperr.Persistence("get agent", err)
	}
	return &agent, nil
}

// ListByOwner retrieves all agents belonging to a principal, newest first.
func (r *AgentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Agent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, apperr.Persistence("list agents", err)
	}
	defer cursor.Close(ctx)

	agents := []models.Agent{}
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, apperr.Persistence("decode agents", err)
	}
	return agents, nil
}

// Update overwrites the mutable agent fields. ID, owner and creation
// timestamp are left untouched. A missing agent yields a NotFoundError.
func (r *AgentRepository) Update(ctx context.Context, agentID string, upd models.AgentUpdate) error {
	update := bson.M{"$set": bson.M{
		"name":        upd.Name,
		"description": upd.Description,
		"config":      upd.Config,
		"updatedAt":   upd.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": agentID}, update)
	if err != nil {
		return apperr.Persistence("update agent", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("agent")
	}
	return nil
}

// Delete removes an agent. Deleting a non-existent id is not an error.
// Dependent sessions are left in place; an orphaned session fails at its
// next message turn.
func (r *AgentRepository) Delete(ctx context.Context, agentID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": agentID}); err != nil {
		return apperr.Persistence("delete agent", err)
	}
	return nil
}
