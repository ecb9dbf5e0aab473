package store

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/speier/claudia/internal/model"
)

// SaveSession persists a session file. Callers hold no lock; SaveSession
// acquires its own.
func (s *Store) SaveSession(sess *model.Session) error {
	return s.withLock(func() error {
		return writeJSONAtomic(s.sessionPath(sess.SessionID), sess)
	})
}

// GetSession loads one session by id.
func (s *Store) GetSession(id string) (*model.Session, error) {
	var sess *model.Session
	err := s.withLock(func() error {
		var err error
		sess, err = s.loadSession(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) loadSession(id string) (*model.Session, error) {
	data, err := os.ReadFile(s.sessionPath(id))
	if os.IsNotExist(err) {
		return nil, model.NotFound("session %s", id)
	}
	if err != nil {
		return nil, model.Internal(err, "reading session %s", id)
	}
	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, model.Internal(err, "parsing session %s", id)
	}
	return &sess, nil
}

// DeleteSession removes a session's file. It is not an error if the file
// does not exist.
func (s *Store) DeleteSession(id string) error {
	return s.withLock(func() error {
		err := os.Remove(s.sessionPath(id))
		if err != nil && !os.IsNotExist(err) {
			return model.Internal(err, "deleting session %s", id)
		}
		return nil
	})
}

// ListSessions returns every live session, sorted by session id for
// deterministic output.
func (s *Store) ListSessions() ([]*model.Session, error) {
	var sessions []*model.Session
	err := s.withLock(func() error {
		entries, err := os.ReadDir(s.path(sessionsDir))
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return model.Internal(err, "listing sessions")
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			id := strings.TrimSuffix(e.Name(), ".json")
			sess, err := s.loadSession(id)
			if err != nil {
				continue // a session removed concurrently between readdir and read
			}
			sessions = append(sessions, sess)
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].SessionID < sessions[j].SessionID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
