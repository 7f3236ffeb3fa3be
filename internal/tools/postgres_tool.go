package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"agenthub/internal/catalog"

	"github.com/jackc/pgx/v5"
)

// newPostgresQueryTool runs a SQL query against the agent's configured
// PostgreSQL database.
func newPostgresQueryTool() *Tool {
	return &Tool{
		Name:        catalog.ToolPostgresQuery,
		Description: "Run a SQL query against the configured PostgreSQL database and return the rows as JSON.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The SQL query to execute",
				},
			},
			"required": []string{"query"},
		},
		Execute: func(ctx context.Context, args map[string]interface{}, inv *Invocation) (string, error) {
			if inv == nil || inv.Database == nil {
				return "", fmt.Errorf("no database configured for this agent")
			}

			query, err := stringArg(args, "query")
			if err != nil {
				return "", err
			}

			conn, err := pgx.Connect(ctx, inv.Database.ConnectionString)
			if err != nil {
				return "", fmt.Errorf("failed to connect to PostgreSQL: %w", err)
			}
			defer conn.Close(ctx)

			rows, err := conn.Query(ctx, query)
			if err != nil {
				return "", fmt.Errorf("query failed: %w", err)
			}
			defer rows.Close()

			fields := rows.FieldDescriptions()
			results := []map[string]interface{}{}
			for rows.Next() {
				if len(results) >= maxQueryRows {
					break
				}
				values, err := rows.Values()
				if err != nil {
					return "", fmt.Errorf("failed to read row: %w", err)
				}
				row := make(map[string]interface{}, len(fields))
				for i, field := range fields {
					row[string(field.Name)] = values[i]
				}
				results = append(results, row)
			}
			if err := rows.Err(); err != nil {
				return "", fmt.Errorf("query failed: %w", err)
			}

			data, err := json.Marshal(map[string]interface{}{
				"status": "success",
				"count":  len(results),
				"data":   results,
			})
			if err != nil {
				return "", fmt.Errorf("failed to encode query results: %w", err)
			}
			return string(data), nil
		},
	}
}
