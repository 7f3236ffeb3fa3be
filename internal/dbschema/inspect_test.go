package dbschema

import (
	"context"
	"testing"

	"agenthub/internal/apperr"
	"agenthub/internal/models"
)

func TestInspectValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.SchemaRequest
	}{
		{"empty connection string", models.SchemaRequest{DBType: "postgres"}},
		{"unsupported db type", models.SchemaRequest{DBType: "oracle", ConnectionString: "oracle://x"}},
		{"mongodb without db name", models.SchemaRequest{DBType: "mongodb", ConnectionString: "mongodb://localhost:27017"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Inspect(ctx, tc.req)
			if !apperr.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCollectColumnsPreservesTableOrder(t *testing.T) {
	rows := [][3]string{
		{"orders", "id", "integer"},
		{"orders", "total", "numeric"},
		{"customers", "id", "integer"},
		{"customers", "email", "text"},
	}
	i := 0
	tables, err := collectColumns(func() (string, string, string, bool, error) {
		if i >= len(rows) {
			return "", "", "", false, nil
		}
		row := rows[i]
		i++
		return row[0], row[1], row[2], true, nil
	})
	if err != nil {
		t.Fatalf("collectColumns failed: %v", err)
	}

	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables[0].Name != "orders" || tables[1].Name != "customers" {
		t.Errorf("table order not preserved: %s, %s", tables[0].Name, tables[1].Name)
	}
	if tables[0].Fields["total"] != "numeric" {
		t.Errorf("expected orders.total numeric, got %q", tables[0].Fields["total"])
	}
	if tables[1].Fields["email"] != "text" {
		t.Errorf("expected customers.email text, got %q", tables[1].Fields["email"])
	}
}
