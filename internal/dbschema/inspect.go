// Package dbschema introspects external databases so the UI can attach a
// schema snapshot to an agent config. It supports MongoDB, PostgreSQL and
// MySQL, returning each table/collection with its field types.
package dbschema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"agenthub/internal/apperr"
	"agenthub/internal/catalog"
	"agenthub/internal/models"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Inspect connects to the database described by req and returns its schema.
// Validation failures (unsupported db_type, missing db_name for mongodb)
// surface as ValidationError; connection and query failures come back as an
// error-status result, mirroring the tester-style contract the UI expects.
func Inspect(ctx context.Context, req models.SchemaRequest) (*models.SchemaResult, error) {
	if req.ConnectionString == "" {
		return nil, apperr.Validation("connection_string", "must not be empty")
	}

	switch req.DBType {
	case catalog.DatabaseMongoDB:
		if req.DBName == "" {
			return nil, apperr.Validation("db_name", "required for db_type 'mongodb'")
		}
		return mongoSchema(ctx, req.ConnectionString, req.DBName), nil
	case catalog.DatabasePostgres:
		return postgresSchema(ctx, req.ConnectionString), nil
	case catalog.DatabaseMySQL:
		return mysqlSchema(ctx, req.ConnectionString), nil
	default:
		return nil, apperr.Validation("db_type", fmt.Sprintf("unsupported type %q, expected one of %v", req.DBType, catalog.DatabaseTypes()))
	}
}

func errorResult(err error) *models.SchemaResult {
	return &models.SchemaResult{Status: "error", Message: err.Error()}
}

// mongoSchema lists all collections and samples one document per collection
// to derive field names and type names.
func mongoSchema(ctx context.Context, connectionString, dbName string) *models.SchemaResult {
	clientOptions := options.Client().
		ApplyURI(connectionString).
		SetServerSelectionTimeout(3 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return errorResult(fmt.Errorf("failed to connect to MongoDB: %w", err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(disconnectCtx)
	}()

	db := client.Database(dbName)
	collections, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return errorResult(fmt.Errorf("failed to list collections: %w", err))
	}
	sort.Strings(collections)

	schema := make([]models.CollectionSchema, 0, len(collections))
	for _, collName := range collections {
		fields := map[string]string{}

		var sample bson.M
		err := db.Collection(collName).FindOne(ctx, bson.M{}).Decode(&sample)
		if err != nil && err != mongo.ErrNoDocuments {
			return errorResult(fmt.Errorf("failed to sample collection %s: %w", collName, err))
		}
		for key, value := range sample {
			if key == "_id" {
				continue
			}
			fields[key] = fmt.Sprintf("%T", value)
		}

		schema = append(schema, models.CollectionSchema{Name: collName, Fields: fields})
	}

	return &models.SchemaResult{
		Status:      "success",
		Database:    dbName,
		Collections: schema,
	}
}

const postgresSchemaQuery = `
SELECT
    c.table_name,
    c.column_name,
    c.data_type
FROM information_schema.columns AS c
JOIN information_schema.tables AS t
    ON c.table_schema = t.table_schema AND c.table_name = t.table_name
WHERE c.table_schema = 'public'
    AND t.table_type = 'BASE TABLE'
ORDER BY c.table_name, c.ordinal_position`

// postgresSchema reads all public tables and their column types.
func postgresSchema(ctx context.Context, connectionString string) *models.SchemaResult {
	conn, err := pgx.Connect(ctx, connectionString)
	if err != nil {
		return errorResult(fmt.Errorf("failed to connect to PostgreSQL: %w", err))
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, postgresSchemaQuery)
	if err != nil {
		return errorResult(fmt.Errorf("schema query failed: %w", err))
	}
	defer rows.Close()

	tables, err := collectColumns(func() (tableName, columnName, dataType string, ok bool, err error) {
		if !rows.Next() {
			return "", "", "", false, rows.Err()
		}
		err = rows.Scan(&tableName, &columnName, &dataType)
		return tableName, columnName, dataType, err == nil, err
	})
	if err != nil {
		return errorResult(fmt.Errorf("failed to read schema rows: %w", err))
	}

	return &models.SchemaResult{
		Status:   "success",
		Database: conn.Config().Database,
		Tables:   tables,
	}
}

const mysqlSchemaQuery = `
SELECT
    c.TABLE_NAME,
    c.COLUMN_NAME,
    c.DATA_TYPE
FROM information_schema.columns AS c
JOIN information_schema.tables AS t
    ON c.table_schema = t.table_schema AND c.table_name = t.table_name
WHERE c.table_schema = DATABASE()
    AND t.table_type = 'BASE TABLE'
ORDER BY c.table_name, c.ordinal_position`

// mysqlSchema reads all tables of the URI's database and their column types.
func mysqlSchema(ctx context.Context, connectionString string) *models.SchemaResult {
	dsn, dbName, err := ParseMySQLURI(connectionString)
	if err != nil {
		return errorResult(err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return errorResult(fmt.Errorf("failed to open MySQL connection: %w", err))
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, mysqlSchemaQuery)
	if err != nil {
		return errorResult(fmt.Errorf("schema query failed: %w", err))
	}
	defer rows.Close()

	tables, err := collectColumns(func() (tableName, columnName, dataType string, ok bool, err error) {
		if !rows.Next() {
			return "", "", "", false, rows.Err()
		}
		err = rows.Scan(&tableName, &columnName, &dataType)
		return tableName, columnName, dataType, err == nil, err
	})
	if err != nil {
		return errorResult(fmt.Errorf("failed to read schema rows: %w", err))
	}

	return &models.SchemaResult{
		Status:   "success",
		Database: dbName,
		Tables:   tables,
	}
}

// collectColumns folds (table, column, type) rows into ordered table schemas.
func collectColumns(next func() (string, string, string, bool, error)) ([]models.CollectionSchema, error) {
	var order []string
	byTable := map[string]map[string]string{}

	for {
		tableName, columnName, dataType, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if _, seen := byTable[tableName]; !seen {
			byTable[tableName] = map[string]string{}
			order = append(order, tableName)
		}
		byTable[tableName][columnName] = dataType
	}

	tables := make([]models.CollectionSchema, 0, len(order))
	for _, name := range order {
		tables = append(tables, models.CollectionSchema{Name: name, Fields: byTable[name]})
	}
	return tables, nil
}
