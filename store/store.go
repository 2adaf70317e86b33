package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collection names as they exist in the database.
const (
	ColPosts     = "posts"
	ColComments  = "comments"
	ColBookmarks = "bookmarks"
	ColSettings  = "settings"
	ColUsers     = "users"
)

// BackupCollections is every collection the backup service may dump.
var BackupCollections = []string{ColPosts, ColComments, ColBookmarks, ColSettings, ColUsers}

// Store is the typed facade over the document database. Repositories go
// through it for collection handles and multi-document transactions.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.SugaredLogger
}

func New(client *mongo.Client, dbName string, log *zap.SugaredLogger) *Store {
	return &Store{
		client: client,
		db:     client.Database(dbName),
		log:    log,
	}
}

func (s *Store) Posts() *mongo.Collection     { return s.db.Collection(ColPosts) }
func (s *Store) Comments() *mongo.Collection  { return s.db.Collection(ColComments) }
func (s *Store) Bookmarks() *mongo.Collection { return s.db.Collection(ColBookmarks) }
func (s *Store) Settings() *mongo.Collection  { return s.db.Collection(ColSettings) }
func (s *Store) Users() *mongo.Collection     { return s.db.Collection(ColUsers) }

func (s *Store) Collection(name string) *mongo.Collection { return s.db.Collection(name) }

func (s *Store) Log() *zap.SugaredLogger { return s.log }

// InTransaction runs fn inside a single multi-document transaction. The
// driver serializes conflicting transactions and retries transient
// transaction errors on its own before this returns.
func (s *Store) InTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
