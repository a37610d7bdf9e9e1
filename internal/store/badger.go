// Cookbook API - Recipe sharing REST backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookbook

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cookbook/internal/metrics"
	"github.com/tomtom215/cookbook/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	userKeyPrefix      = "user:"
	userNameKeyPrefix  = "user_name:"
	userEmailKeyPrefix = "user_email:"
	userSequenceKey    = "seq:user"
)

// BadgerStore implements UserStore using BadgerDB for durable storage.
//
// Users are stored as JSON under user:<id>; user_name:<username> and
// user_email:<email> hold the id for login lookups. Ids come from a Badger
// sequence so they stay unique across restarts.
type BadgerStore struct {
	db    *badger.DB
	seq   *badger.Sequence
	owned bool
	now   func() time.Time
}

// OpenBadgerStore opens (or creates) a BadgerDB at path and returns a store
// that closes the database on Close.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}

	s, err := NewBadgerStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewBadgerStore creates a user store on an already open database.
// The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	seq, err := db.GetSequence([]byte(userSequenceKey), 100)
	if err != nil {
		return nil, fmt.Errorf("get user sequence: %w", err)
	}
	return &BadgerStore{db: db, seq: seq, now: time.Now}, nil
}

func userKey(id int64) []byte {
	// Zero-padded so prefix iteration yields users in id order.
	return []byte(fmt.Sprintf("%s%020d", userKeyPrefix, id))
}

func nameKey(username string) []byte {
	return []byte(userNameKeyPrefix + normalizeKey(username))
}

func emailKey(email string) []byte {
	return []byte(userEmailKeyPrefix + normalizeKey(email))
}

// indexKeys lists the index entries of u. Accounts without an email have no
// email entry, so any number of them may exist.
func indexKeys(u *models.User) [][]byte {
	keys := [][]byte{nameKey(u.Username)}
	if normalizeKey(u.Email) != "" {
		keys = append(keys, emailKey(u.Email))
	}
	return keys
}

func deleteIndexes(txn *badger.Txn, u *models.User) error {
	for _, key := range indexKeys(u) {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete index %s: %w", key, err)
		}
	}
	return nil
}

// getUser reads and decodes user:<id> inside txn.
func getUser(txn *badger.Txn, id int64) (*models.User, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var u models.User
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &u)
	}); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// lookupIndex resolves an index key to a user id.
func lookupIndex(txn *badger.Txn, key []byte) (int64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get index: %w", err)
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, fmt.Errorf("read index: %w", err)
	}
	id, err := strconv.ParseInt(string(val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt index %q: %w", key, err)
	}
	return id, nil
}

// indexFree reports whether key is unused or already points at id.
func indexFree(txn *badger.Txn, key []byte, id int64) (bool, error) {
	owner, err := lookupIndex(txn, key)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return owner == id, nil
}

// FindByID returns the user with the given id.
func (s *BadgerStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	var u *models.User
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		u, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByUsernameOrEmail looks the login up by username, then by email.
func (s *BadgerStore) FindByUsernameOrEmail(_ context.Context, login string) (*models.User, error) {
	if normalizeKey(login) == "" {
		return nil, ErrNotFound
	}

	var u *models.User
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, nameKey(login))
		if errors.Is(err, ErrNotFound) {
			id, err = lookupIndex(txn, emailKey(login))
		}
		if err != nil {
			return err
		}
		u, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// List returns all users ordered by id.
func (s *BadgerStore) List(_ context.Context) ([]*models.User, error) {
	var users []*models.User

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userKeyPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var u models.User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			}); err != nil {
				return fmt.Errorf("decode user: %w", err)
			}
			users = append(users, &u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of stored users.
func (s *BadgerStore) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Create stores a new user and assigns its id.
func (s *BadgerStore) Create(_ context.Context, u *models.User) error {
	next, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next user id: %w", err)
	}

	created := cloneUser(u)
	created.ID = int64(next) + 1
	created.CreatedAt = s.now().UTC()
	created.UpdatedAt = created.CreatedAt

	err = s.db.Update(func(txn *badger.Txn) error {
		return s.writeUser(txn, created, nil)
	})
	if err != nil {
		return err
	}

	u.ID, u.CreatedAt, u.UpdatedAt = created.ID, created.CreatedAt, created.UpdatedAt
	return nil
}

// Update replaces an existing user.
func (s *BadgerStore) Update(_ context.Context, u *models.User) error {
	updated := cloneUser(u)

	err := s.db.Update(func(txn *badger.Txn) error {
		old, err := getUser(txn, u.ID)
		if err != nil {
			return err
		}
		updated.CreatedAt = old.CreatedAt
		updated.UpdatedAt = s.now().UTC()
		return s.writeUser(txn, updated, old)
	})
	if err != nil {
		return err
	}

	u.CreatedAt, u.UpdatedAt = updated.CreatedAt, updated.UpdatedAt
	return nil
}

// writeUser checks uniqueness, drops stale index entries of old (if any) and
// writes u with its index entries.
func (s *BadgerStore) writeUser(txn *badger.Txn, u, old *models.User) error {
	keys := indexKeys(u)
	for _, key := range keys {
		free, err := indexFree(txn, key, u.ID)
		if err != nil {
			return err
		}
		if !free {
			return ErrDuplicate
		}
	}

	if old != nil {
		if err := deleteIndexes(txn, old); err != nil {
			return err
		}
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	id := []byte(strconv.FormatInt(u.ID, 10))
	if err := txn.Set(userKey(u.ID), data); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	for _, key := range keys {
		if err := txn.Set(key, id); err != nil {
			return fmt.Errorf("set index %s: %w", key, err)
		}
	}
	return nil
}

// Delete removes a user and its index entries.
func (s *BadgerStore) Delete(_ context.Context, id int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		u, err := getUser(txn, id)
		if err != nil {
			return err
		}
		if err := deleteIndexes(txn, u); err != nil {
			return err
		}
		if err := txn.Delete(userKey(id)); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// Close releases the id sequence and, when the store opened the database
// itself, closes it.
func (s *BadgerStore) Close() error {
	var errs []error
	if err := s.seq.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release sequence: %w", err))
	}
	if s.owned {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close badger: %w", err))
		}
	}
	return errors.Join(errs...)
}

// gcDiscardRatio is the fraction of a value log file that must be stale
// before RunValueLogGC rewrites it.
const gcDiscardRatio = 0.5

// RunValueLogGC reclaims value log space until badger reports nothing left to
// rewrite.
func (s *BadgerStore) RunValueLogGC(_ context.Context) error {
	start := time.Now()
	err := s.runValueLogGC()
	metrics.RecordStoreOperation("badger", "value_log_gc", time.Since(start), errorType(err))
	return err
}

func (s *BadgerStore) runValueLogGC() error {
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}
