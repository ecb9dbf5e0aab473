package store

import (
	"encoding/json"
	"os"

	"github.com/speier/claudia/internal/model"
)

// loadSnapshot reads tasks.json, returning an empty, freshly-versioned
// snapshot if the file does not yet exist. Caller must hold the lock.
func (s *Store) loadSnapshot() (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path(tasksFile))
	if os.IsNotExist(err) {
		return &model.Snapshot{Version: snapshotVersion, NextID: 1}, nil
	}
	if err != nil {
		return nil, model.Internal(err, "reading tasks.json")
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, model.Internal(err, "parsing tasks.json")
	}
	return &snap, nil
}

func (s *Store) writeSnapshot(snap *model.Snapshot) error {
	if snap.Version == 0 {
		snap.Version = snapshotVersion
	}
	if err := writeJSONAtomic(s.path(tasksFile), snap); err != nil {
		return model.Internal(err, "writing tasks.json")
	}
	return nil
}

// Snapshot returns a read-only copy of the current task set, taken under the
// store lock and released immediately after.
func (s *Store) Snapshot() (*model.Snapshot, error) {
	var snap *model.Snapshot
	err := s.withLock(func() error {
		var err error
		snap, err = s.loadSnapshot()
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Mutate runs fn against a freshly loaded, mutable snapshot. fn reports the
// event that describes what it did; every mutation in this implementation
// appends exactly one history record. If fn returns an error the
// transaction aborts: no file is touched and the error propagates to the
// caller unchanged. After fn succeeds, invariants
// are validated, the snapshot is persisted atomically, and the event (if
// any) is appended to history.jsonl. The resulting snapshot is returned so
// callers can read back the entity they just touched.
func (s *Store) Mutate(fn func(*model.Snapshot) (*model.Event, error)) (*model.Snapshot, error) {
	var result *model.Snapshot
	err := s.withLock(func() error {
		snap, err := s.loadSnapshot()
		if err != nil {
			return err
		}

		ev, err := fn(snap)
		if err != nil {
			return err
		}

		if err := model.Validate(snap); err != nil {
			return err
		}

		if err := s.writeSnapshot(snap); err != nil {
			return err
		}

		if ev != nil {
			if ev.Timestamp == "" {
				ev.Timestamp = model.NowUTC()
			}
			if err := s.appendHistory(*ev); err != nil {
				return err
			}
		}

		result = snap
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
