package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/posts"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepositoryManager keeps users and posts in two collections of one
// database. Multi-document transactions need a replica set, so they are
// used only when enabled.
type MongoRepositoryManager struct {
	client          *mongo.Client
	users           *users.MongoRepository
	posts           *posts.MongoRepository
	useTransactions bool
}

func NewMongoRepositoryManager(client *mongo.Client, dbName string, useTransactions bool) *MongoRepositoryManager {
	db := client.Database(dbName)
	return &MongoRepositoryManager{
		client:          client,
		users:           users.NewMongoRepository(db),
		posts:           posts.NewMongoRepository(db),
		useTransactions: useTransactions,
	}
}

func (m *MongoRepositoryManager) Users() users.Repository { return m.users }
func (m *MongoRepositoryManager) Posts() posts.Repository { return m.posts }
func (m *MongoRepositoryManager) Transactional() bool     { return m.useTransactions }

// InTx runs fn in a session transaction when enabled. The repositories are
// shared; the session travels in the context.
func (m *MongoRepositoryManager) InTx(ctx context.Context, fn TxFunc) error {
	if !m.useTransactions {
		return fn(ctx, m.users, m.posts)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc, m.users, m.posts)
	})
	return err
}

func (m *MongoRepositoryManager) EnsureIndexes(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.posts.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// mongoConnect is a seam for tests.
var mongoConnect = func(ctx context.Context, dsn string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(dsn))
}

func openMongo(ctx context.Context, dsn, dbName string, useTransactions bool) (*MongoRepositoryManager, error) {
	client, err := mongoConnect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	m := NewMongoRepositoryManager(client, dbName, useTransactions)

	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}
