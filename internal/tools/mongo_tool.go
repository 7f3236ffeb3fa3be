package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agenthub/internal/catalog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxQueryRows = 50

// newMongoQueryTool runs a find against the agent's configured MongoDB
// database. The filter arrives as a JSON string authored by the model.
func newMongoQueryTool() *Tool {
	return &Tool{
		Name:        catalog.ToolMongoQuery,
		Description: "Query a MongoDB collection with a JSON filter. Example query: {\"gender\": \"male\"}",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "The collection to query",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "A JSON string representing the MongoDB filter",
				},
			},
			"required": []string{"collection", "query"},
		},
		Execute: func(ctx context.Context, args map[string]interface{}, inv *Invocation) (string, error) {
			if inv == nil || inv.Database == nil {
				return "", fmt.Errorf("no database configured for this agent")
			}
			dbConfig := inv.Database
			if dbConfig.DBName == "" {
				return "", fmt.Errorf("mongodb config is missing db_name")
			}

			collName, err := stringArg(args, "collection")
			if err != nil {
				return "", err
			}
			queryJSON, err := stringArg(args, "query")
			if err != nil {
				return "", err
			}

			var filter bson.M
			if err := json.Unmarshal([]byte(queryJSON), &filter); err != nil {
				return "", fmt.Errorf("invalid JSON query format: %w", err)
			}

			clientOptions := options.Client().
				ApplyURI(dbConfig.ConnectionString).
				SetServerSelectionTimeout(3 * time.Second)
			client, err := mongo.Connect(ctx, clientOptions)
			if err != nil {
				return "", fmt.Errorf("failed to connect to MongoDB: %w", err)
			}
			defer func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				client.Disconnect(disconnectCtx)
			}()

			coll := client.Database(dbConfig.DBName).Collection(collName)
			cursor, err := coll.Find(ctx, filter, options.Find().SetLimit(maxQueryRows))
			if err != nil {
				return "", fmt.Errorf("query failed: %w", err)
			}
			defer cursor.Close(ctx)

			var docs []bson.M
			if err := cursor.All(ctx, &docs); err != nil {
				return "", fmt.Errorf("failed to read query results: %w", err)
			}

			// _id values are rarely useful to the model and often not
			// JSON-friendly
			for _, doc := range docs {
				delete(doc, "_id")
			}

			data, err := json.Marshal(map[string]interface{}{
				"status": "success",
				"count":  len(docs),
				"data":   docs,
			})
			if err != nil {
				return "", fmt.Errorf("failed to encode query results: %w", err)
			}
			return string(data), nil
		},
	}
}
