package repositories

import (
	"context"
	"errors"
	"time"

	"agenthub/internal/apperr"
	"agenthub/internal/database"
	"agenthub/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository persists chat sessions in the sessions collection,
// keyed by thread id.
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.MongoDB) *SessionRepository {
	return &SessionRepository{
		collection: db.Collection(database.CollectionSessions),
	}
}

// Insert stores a new session document.
func (r *SessionRepository) Insert(ctx context.Context, session *models.Session) error {
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return apperr.Persistence("insert session", err)
	}
	return nil
}

// GetByID retrieves a session by its thread id.
func (r *SessionRepository) GetByID(ctx context.Context, threadID string) (*models.Session, error) {
	var session models.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": threadID}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("session")
	}
	if err != nil {
		return nil, apperr.Persistence("get session", err)
	}
	return &session, nil
}

// ListByAgent retrieves all sessions for an agent, most-recently-updated first.
func (r *SessionRepository) ListByAgent(ctx context.Context, agentID string) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"agentId": agentID}, opts)
	if err != nil {
		return nil, apperr.Persistence("list sessions", err)
	}
	defer cursor.Close(ctx)

	sessions := []models.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, apperr.Persistence("decode sessions", err)
	}
	return sessions, nil
}

// Touch bumps the session's updated_at timestamp after a successful turn.
func (r *SessionRepository) Touch(ctx context.Context, threadID string) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": threadID}, update); err != nil {
		return apperr.Persistence("touch session", err)
	}
	return nil
}

// UpdateTitle renames a session. A missing session yields a NotFoundError.
func (r *SessionRepository) UpdateTitle(ctx context.Context, threadID, title string) error {
	update := bson.M{"$set": bson.M{
		"title":     title,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": threadID}, update)
	if err != nil {
		return apperr.Persistence("rename session", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("session")
	}
	return nil
}

// Delete removes a session, independently of its agent. Deleting a
// non-existent id is not an error.
func (r *SessionRepository) Delete(ctx context.Context, threadID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": threadID}); err != nil {
		return apperr.Persistence("delete session", err)
	}
	return nil
}
