package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"agenthub/internal/catalog"
	"agenthub/internal/dbschema"

	_ "github.com/go-sql-driver/mysql"
)

// newMySQLQueryTool runs a SQL query against the agent's configured MySQL
// database.
func newMySQLQueryTool() *Tool {
	return &Tool{
		Name:        catalog.ToolMySQLQuery,
		Description: "Run a SQL query against the configured MySQL database and return the rows as JSON.",
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

			dsn, _, err := dbschema.ParseMySQLURI(inv.Database.ConnectionString)
			if err != nil {
				return "", err
			}

			db, err := sql.Open("mysql", dsn)
			if err != nil {
				return "", fmt.Errorf("failed to open MySQL connection: %w", err)
			}
			defer db.Close()

			rows, err := db.QueryContext(ctx, query)
			if err != nil {
				return "", fmt.Errorf("query failed: %w", err)
			}
			defer rows.Close()

			columns, err := rows.Columns()
			if err != nil {
				return "", fmt.Errorf("failed to read columns: %w", err)
			}

			results := []map[string]interface{}{}
			for rows.Next() {
				if len(results) >= maxQueryRows {
					break
				}
				values := make([]interface{}, len(columns))
				pointers := make([]interface{}, len(columns))
				for i := range values {
					pointers[i] = &values[i]
				}
				if err := rows.Scan(pointers...); err != nil {
					return "", fmt.Errorf("failed to read row: %w", err)
				}

				row := make(map[string]interface{}, len(columns))
				for i, column := range columns {
					// The driver returns []byte for text columns
					if b, ok := values[i].([]byte); ok {
						row[column] = string(b)
					} else {
						row[column] = values[i]
					}
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
