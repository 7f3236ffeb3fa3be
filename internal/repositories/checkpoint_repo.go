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

// CheckpointRepository is the durable transcript store, keyed by thread id.
// It is the source of truth for conversation history: the engine cache may be
// evicted at any time, the checkpoint document survives.
type CheckpointRepository struct {
	collection *mongo.Collection
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *database.MongoDB) *CheckpointRepository {
	return &CheckpointRepository{
		collection: db.Collection(database.CollectionCheckpoints),
	}
}

// AppendTurn appends turns to a thread's transcript, creating the checkpoint
// document on first use. The upsert is atomic, so concurrent appends for the
// same thread never lose entries.
func (r *CheckpointRepository) AppendTurn(ctx context.Context, threadID string, turns ...models.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	update := bson.M{
		"$push": bson.M{"turns": bson.M{"$each": turns}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": threadID}, update, opts); err != nil {
		return apperr.Persistence("append turn", err)
	}
	return nil
}

// LoadTranscript returns a thread's ordered transcript. An unknown thread id
// yields an empty transcript, not an error, so a brand-new session reads back
// an empty history.
func (r *CheckpointRepository) LoadTranscript(ctx context.Context, threadID string) ([]models.Turn, error) {
	var checkpoint models.Checkpoint
	err := r.collection.FindOne(ctx, bson.M{"_id": threadID}).Decode(&checkpoint)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.Turn{}, nil
	}
	if err != nil {
		return nil, apperr.Persistence("load transcript", err)
	}
	if checkpoint.Turns == nil {
		return []models.Turn{}, nil
	}
	return checkpoint.Turns, nil
}

// Delete removes a thread's transcript. Deleting a non-existent id is not an
// error.
func (r *CheckpointRepository) Delete(ctx context.Context, threadID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": threadID}); err != nil {
		return apperr.Persistence("delete transcript", err)
	}
	return nil
}
