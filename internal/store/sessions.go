package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/reviewshelf/reviewshelf-server/internal/domain"
)

const (
	sessionPrefix        = "session:"
	sessionByTokenPrefix = "idx:sessions:token:" // refresh token hash -> session ID
	sessionByUserPrefix  = "idx:sessions:user:"  // userID:sessionID composite keys
)

// Session Operations

// CreateSession creates a new session with token and user indices.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if err := txn.Set([]byte(sessionPrefix+session.ID), data); err != nil {
			return err
		}

		tokenKey := []byte(sessionByTokenPrefix + session.RefreshTokenHash)
		if err := txn.Set(tokenKey, []byte(session.ID)); err != nil {
			return err
		}

		userKey := []byte(sessionByUserPrefix + session.UserID + ":" + session.ID)
		return txn.Set(userKey, []byte{})
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("session created", "id", session.ID, "user_id", session.UserID)
	}

	return nil
}

// GetSession retrieves a session by ID.
// Expired sessions come back as ErrSessionExpired.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := s.get([]byte(sessionPrefix+id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// GetSessionByRefreshToken looks up a session by its refresh token hash.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sessionID string

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionByTokenPrefix + tokenHash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session by token: %w", err)
	}

	return s.GetSession(ctx, sessionID)
}

// UpdateSession persists session changes, moving the token index when the
// refresh token was rotated.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	old, err := s.GetSession(ctx, session.ID)
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if err := txn.Set([]byte(sessionPrefix+session.ID), data); err != nil {
			return err
		}

		if old != nil && old.RefreshTokenHash != session.RefreshTokenHash {
			oldTokenKey := []byte(sessionByTokenPrefix + old.RefreshTokenHash)
			if err := txn.Delete(oldTokenKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		tokenKey := []byte(sessionByTokenPrefix + session.RefreshTokenHash)
		return txn.Set(tokenKey, []byte(session.ID))
	})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// DeleteSession deletes a session and its indices.
func (s *Store) DeleteSession(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var session domain.Session
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
		if err != nil {
			return err
		}

		return s.deleteSessionInTxn(txn, &session)
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// ListUserSessions returns all active sessions for a user.
func (s *Store) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	prefix := []byte(sessionByUserPrefix + userID + ":")
	var sessionIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			sessionIDs = append(sessionIDs, key[len(prefix):])
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan user sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		session, err := s.GetSession(ctx, id)
		if err != nil {
			// Expired and dangling entries are skipped, not surfaced.
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// DeleteAllUserSessions revokes every session belonging to a user.
func (s *Store) DeleteAllUserSessions(_ context.Context, userID string) (int, error) {
	prefix := []byte(sessionByUserPrefix + userID + ":")
	deleted := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		var sessionIDs []string

		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			sessionIDs = append(sessionIDs, key[len(prefix):])
		}
		it.Close()

		for _, id := range sessionIDs {
			item, err := txn.Get([]byte(sessionPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var session domain.Session
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				return err
			}

			if err := s.deleteSessionInTxn(txn, &session); err != nil {
				return err
			}
			deleted++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}

	if s.logger != nil && deleted > 0 {
		s.logger.Info("user sessions revoked", "user_id", userID, "count", deleted)
	}

	return deleted, nil
}

// DeleteExpiredSessions removes sessions past their expiry.
// Two passes: collect under a read iterator, then delete.
func (s *Store) DeleteExpiredSessions(_ context.Context) (int, error) {
	now := time.Now()
	var expired []*domain.Session

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(sessionPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session domain.Session
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				return err
			}

			if now.After(session.ExpiresAt) {
				expired = append(expired, &session)
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan expired sessions: %w", err)
	}

	deleted := 0
	for _, session := range expired {
		err := s.db.Update(func(txn *badger.Txn) error {
			return s.deleteSessionInTxn(txn, session)
		})
		if err != nil {
			return deleted, fmt.Errorf("delete expired session: %w", err)
		}
		deleted++
	}

	if s.logger != nil && deleted > 0 {
		s.logger.Info("expired sessions cleaned up", "count", deleted)
	}

	return deleted, nil
}

// deleteSessionInTxn removes a session and both of its index entries.
func (s *Store) deleteSessionInTxn(txn *badger.Txn, session *domain.Session) error {
	if err := txn.Delete([]byte(sessionPrefix + session.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	tokenKey := []byte(sessionByTokenPrefix + session.RefreshTokenHash)
	if err := txn.Delete(tokenKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	userKey := []byte(sessionByUserPrefix + session.UserID + ":" + session.ID)
	if err := txn.Delete(userKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	return nil
}
