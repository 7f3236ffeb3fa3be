package models

// SchemaRequest asks for the structure of an external database.
type SchemaRequest struct {
	DBType           string `json:"db_type"`
	ConnectionString string `json:"connection_string"`
	DBName           string `json:"db_name,omitempty"`
}

// SchemaResult is the outcome of a schema inspection. Tables is set for
// relational databases, Collections for document stores. A reachable
// endpoint that still fails mid-inspection yields Status "error" with
// Message set.
type SchemaResult struct {
	Status      string             `json:"status"`
	Database    string             `json:"database,omitempty"`
	Tables      []CollectionSchema `json:"tables,omitempty"`
	Collections []CollectionSchema `json:"collections,omitempty"`
	Message     string             `json:"message,omitempty"`
}
