package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mehdihou95/middleware-mapper/internal/logger"
	"github.com/mehdihou95/middleware-mapper/internal/mapping"
	"github.com/mehdihou95/middleware-mapper/internal/record"
)

// rulesCollection holds mapping rules, one document per rule, keyed by
// interface ID and table name
const rulesCollection = "mapping_rules"

// MongoStore is a MongoDB-backed persistence boundary. Each destination
// table maps to a collection of the same name; it also serves as a rule
// source for deployments that manage rules in the database.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
	log      *logger.Logger
}

// NewMongoStore connects to MongoDB and verifies the connection
func NewMongoStore(connectionString, databaseName string, log *logger.Logger) (*MongoStore, error) {
	clientOptions := options.Client().
		ApplyURI(connectionString).
		SetConnectTimeout(30 * time.Second).
		SetSocketTimeout(120 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:   client,
		database: client.Database(databaseName),
		log:      log,
	}, nil
}

// Close closes the MongoDB connection
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// PersistHeader inserts the header into its table's collection and returns
// the assigned identity
func (s *MongoStore) PersistHeader(ctx context.Context, h record.Header) (string, error) {
	id := uuid.New().String()
	h.SetID(id)

	doc := bson.M(h.Document())
	if _, err := s.database.Collection(h.Table()).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert into %s: %w", h.Table(), err)
	}

	s.log.Debugf("persisted header %s into %s", id, h.Table())
	return id, nil
}

// PersistLines inserts the batch grouped per table collection
func (s *MongoStore) PersistLines(ctx context.Context, lines []record.Line) error {
	byTable := make(map[string][]interface{})
	for _, l := range lines {
		byTable[l.Table()] = append(byTable[l.Table()], bson.M(l.Document()))
	}

	for table, docs := range byTable {
		if _, err := s.database.Collection(table).InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert %d lines into %s: %w", len(docs), table, err)
		}
		s.log.Debugf("persisted %d lines into %s", len(docs), table)
	}
	return nil
}

// ResolveMappingRules loads the active rule set for one interface and table
// from the rules collection
func (s *MongoStore) ResolveMappingRules(ctx context.Context, interfaceID, tableName string) ([]mapping.Rule, error) {
	filter := bson.M{"interfaceId": interfaceID, "tableName": tableName}
	cursor, err := s.database.Collection(rulesCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find rules for interface %s: %w", interfaceID, err)
	}
	defer cursor.Close(ctx)

	var rules []mapping.Rule
	for cursor.Next(ctx) {
		var doc struct {
			SourcePath     string `bson:"sourcePath"`
			TargetField    string `bson:"targetField"`
			TableName      string `bson:"tableName"`
			Transformation string `bson:"transformation"`
			IsActive       bool   `bson:"isActive"`
			Priority       int    `bson:"priority"`
			Required       bool   `bson:"required"`
			DefaultValue   string `bson:"defaultValue"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode rule: %w", err)
		}
		rules = append(rules, mapping.Rule(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}
