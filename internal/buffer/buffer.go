package buffer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ItIsYeBananaduck/git-fit/internal/intensity"
)

// schemaVersion is stored inside the database so a future layout change can
// migrate old buffers instead of silently misreading them.
const schemaVersion = 1

var (
	ErrSessionNotFound    = errors.New("session not found in buffer")
	ErrFeedbackAlreadySet = errors.New("session already has feedback attached")

	keySchemaVersion = []byte("schema_version")
)

func sessionKey(userID, sessionID string) []byte {
	return []byte(fmt.Sprintf("v1|session|%s|%s", userID, sessionID))
}

func sessionPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("v1|session|%s|", userID))
}

func lastProcessedKey(userID string) []byte {
	return []byte(fmt.Sprintf("v1|last_processed|%s", userID))
}

// Buffer is the badger-backed local store for workout sessions awaiting
// their weekly run. Single writer per device; a session is removed only
// after its weekly batch record is confirmed stored remotely.
type Buffer struct {
	db *badger.DB
}

func Open(path string) (*Buffer, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create buffer directory: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger is chatty, logrus covers what we need

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open buffer db: %w", err)
	}

	b := &Buffer{db: db}
	if err := b.ensureSchemaVersion(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return b, nil
}

func (b *Buffer) ensureSchemaVersion() error {
	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keySchemaVersion)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set(keySchemaVersion, []byte(strconv.Itoa(schemaVersion)))
		}
		if err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}

		return item.Value(func(val []byte) error {
			stored, err := strconv.Atoi(string(val))
			if err != nil {
				return fmt.Errorf("parse schema version %q: %w", val, err)
			}
			if stored > schemaVersion {
				return fmt.Errorf("buffer schema version %d is newer than supported %d", stored, schemaVersion)
			}
			if stored < schemaVersion {
				// future migrations hook in here; v1 is the first layout
				log.Warnf("buffer schema version %d behind current %d", stored, schemaVersion)
			}
			return nil
		})
	})
}

// Add stores a completed workout session locally. A missing ID is assigned
// here, so callers get back the identity used for later removal.
func (b *Buffer) Add(session intensity.WorkoutSession) (intensity.WorkoutSession, error) {
	if err := session.Validate(); err != nil {
		return intensity.WorkoutSession{}, fmt.Errorf("validate session: %w", err)
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	sessionJson, err := json.Marshal(session)
	if err != nil {
		return intensity.WorkoutSession{}, fmt.Errorf("marshal session: %w", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(session.UserID, session.ID), sessionJson)
	})
	if err != nil {
		return intensity.WorkoutSession{}, fmt.Errorf("store session: %w", err)
	}

	return session, nil
}

// AttachFeedback sets the subjective feedback on a buffered session.
// A session takes feedback at most once.
func (b *Buffer) AttachFeedback(userID, sessionID string, feedback intensity.Feedback) error {
	if !feedback.IsValid() {
		return fmt.Errorf("%w: %q", intensity.ErrInvalidFeedback, feedback)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(userID, sessionID)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var session intensity.WorkoutSession
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
		if err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}

		if session.Feedback != nil {
			return ErrFeedbackAlreadySet
		}
		session.Feedback = &feedback

		sessionJson, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		return txn.Set(key, sessionJson)
	})
}

// Sessions returns all buffered sessions for the user.
func (b *Buffer) Sessions(userID string) ([]intensity.WorkoutSession, error) {
	var sessions []intensity.WorkoutSession

	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := sessionPrefix(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var session intensity.WorkoutSession
				if err := json.Unmarshal(val, &session); err != nil {
					return fmt.Errorf("unmarshal session: %w", err)
				}
				sessions = append(sessions, session)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = make([]intensity.WorkoutSession, 0)
	}
	return sessions, nil
}

// PendingCount returns the number of buffered sessions for the user.
func (b *Buffer) PendingCount(userID string) (int, error) {
	sessions, err := b.Sessions(userID)
	if err != nil {
		return -1, err
	}
	return len(sessions), nil
}

// Remove purges the given sessions from the buffer. Callers invoke it only
// after their weekly batch records are confirmed stored remotely.
func (b *Buffer) Remove(userID string, sessionIDs []string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, id := range sessionIDs {
			if err := txn.Delete(sessionKey(userID, id)); err != nil {
				return fmt.Errorf("delete session %s: %w", id, err)
			}
		}
		return nil
	})
}

// LastProcessed returns the timestamp of the last fully successful weekly
// run for the user, or nil if there was none yet.
func (b *Buffer) LastProcessed(userID string) (*time.Time, error) {
	var lastProcessed *time.Time

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(lastProcessedKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			t, err := time.Parse(time.RFC3339Nano, string(val))
			if err != nil {
				return fmt.Errorf("parse last processed %q: %w", val, err)
			}
			lastProcessed = &t
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return lastProcessed, nil
}

func (b *Buffer) SetLastProcessed(userID string, t time.Time) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(lastProcessedKey(userID), []byte(t.UTC().Format(time.RFC3339Nano)))
	})
}

// Users returns the user IDs that currently have buffered sessions.
func (b *Buffer) Users() ([]string, error) {
	seen := make(map[string]bool)
	var users []string

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("v1|session|")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			rest := key[len(prefix):]
			for i := 0; i < len(rest); i++ {
				if rest[i] == '|' {
					if userID := rest[:i]; !seen[userID] {
						seen[userID] = true
						users = append(users, userID)
					}
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (b *Buffer) Close() error {
	return b.db.Close()
}
