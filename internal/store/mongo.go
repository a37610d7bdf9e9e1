// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/cookbook/internal/models"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
	userCounterID      = "user_id"
)

// userDocument is the BSON shape of a stored user. Role is kept as its
// wire string so the collection stays readable from the mongo shell.
type userDocument struct {
	ID            int64     `bson:"_id"`
	Username      string    `bson:"username"`
	UsernameLower string    `bson:"username_lower"`
	Email         string    `bson:"email"`
	PasswordHash  string    `bson:"password_hash"`
	Role          string    `bson:"role"`
	Enabled       bool      `bson:"enabled"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func toDocument(u *models.User) userDocument {
	return userDocument{
		ID:            u.ID,
		Username:      u.Username,
		UsernameLower: normalizeKey(u.Username),
		Email:         normalizeKey(u.Email),
		PasswordHash:  u.PasswordHash,
		Role:          u.Role.String(),
		Enabled:       u.Enabled,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d *userDocument) toUser() (*models.User, error) {
	role, err := models.ParseRole(d.Role)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", d.ID, err)
	}
	return &models.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         role,
		Enabled:      d.Enabled,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// MongoStore implements UserStore on a MongoDB collection. Numeric ids are
// allocated from a counters collection.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// OpenMongoStore connects to uri, ensures the unique indexes exist and
// returns a store on database db.
func OpenMongoStore(ctx context.Context, uri, db string) (*MongoStore, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		client:   client,
		users:    client.Database(db).Collection(usersCollection),
		counters: client.Database(db).Collection(countersCollection),
		now:      time.Now,
	}

	_, err = s.users.Indexes().CreateMany(dialCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username_lower", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}})},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create user indexes: %w", err)
	}

	return s, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter interface{}) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toUser()
}

// FindByID returns the user with the given id.
func (s *MongoStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByUsernameOrEmail looks the login up by username, then by email.
func (s *MongoStore) FindByUsernameOrEmail(ctx context.Context, login string) (*models.User, error) {
	key := normalizeKey(login)
	if key == "" {
		return nil, ErrNotFound
	}

	u, err := s.findOne(ctx, bson.M{"username_lower": key})
	if errors.Is(err, ErrNotFound) {
		return s.findOne(ctx, bson.M{"email": key})
	}
	return u, err
}

// List returns all users ordered by id.
func (s *MongoStore) List(ctx context.Context) ([]*models.User, error) {
	cur, err := s.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*models.User, 0, len(docs))
	for i := range docs {
		u, err := docs[i].toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Count returns the number of stored users.
func (s *MongoStore) Count(ctx context.Context) (int, error) {
	n, err := s.users.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

// nextID atomically increments the user counter.
func (s *MongoStore) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": userCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate user id: %w", err)
	}
	return counter.Seq, nil
}

// Create stores a new user and assigns its id.
func (s *MongoStore) Create(ctx context.Context, u *models.User) error {
	id, err := s.nextID(ctx)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	doc := toDocument(u)
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	u.ID, u.CreatedAt, u.UpdatedAt = id, now, now
	return nil
}

// Update replaces an existing user, keeping its creation time.
func (s *MongoStore) Update(ctx context.Context, u *models.User) error {
	existing, err := s.FindByID(ctx, u.ID)
	if err != nil {
		return err
	}

	doc := toDocument(u)
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = s.now().UTC()

	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": u.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	u.CreatedAt, u.UpdatedAt = doc.CreatedAt, doc.UpdatedAt
	return nil
}

// Delete removes a user.
func (s *MongoStore) Delete(ctx context.Context, id int64) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
