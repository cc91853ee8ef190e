package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tidwall/buntdb"
)

const sessionKeyPrefix = "session:"

// ErrNoSession is returned for unknown or expired session ids.
var ErrNoSession = errors.New("no such session")

// SessionStore maps opaque session ids (the cookie value) to user ids. Entries expire after the configured max age.
type SessionStore struct {
	db   *buntdb.DB
	lock *flock.Flock
	ttl  time.Duration
}

// OpenSessionStore opens the BuntDB file (or ":memory:") configured in cfg. File backed stores are guarded by a file
// lock so that only one server process uses them.
func OpenSessionStore(cfg config.SessionConfig) (*SessionStore, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	var lock *flock.Flock
	if path != ":memory:" {
		lockPath := cfg.FlockPath
		if lockPath == "" {
			lockPath = path + ".lock"
		}
		lock = flock.New(lockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, fmt.Errorf("session store %s is locked by another process", path)
		}
	}
	db, err := buntdb.Open(path)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, err
	}
	ttl := cfg.MaxAge
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{db: db, lock: lock, ttl: ttl}, nil
}

func (s *SessionStore) MaxAge() time.Duration {
	return s.ttl
}

// Create starts a new session for userID and returns its id.
func (s *SessionStore) Create(userID uint) (string, error) {
	sid := uuid.NewString()
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(sessionKeyPrefix+sid, strconv.FormatUint(uint64(userID), 10), &buntdb.SetOptions{Expires: true, TTL: s.ttl})
		return err
	})
	if err != nil {
		return "", err
	}
	return sid, nil
}

// Get returns the user id of session sid.
func (s *SessionStore) Get(sid string) (uint, error) {
	if sid == "" {
		return 0, ErrNoSession
	}
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		var err error
		raw, err = tx.Get(sessionKeyPrefix + sid)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		globals.AppLogger.Warn("corrupt session entry", "session", sid, "error", err)
		return 0, ErrNoSession
	}
	return uint(id), nil
}

// Delete ends session sid. Unknown sessions are ignored.
func (s *SessionStore) Delete(sid string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(sessionKeyPrefix + sid)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil
	}
	return err
}

func (s *SessionStore) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}
