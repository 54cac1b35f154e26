// Package roster manages the user's ordered list of preferred stores.
// Lower preference_order means the store is visited earlier; the route
// planner consumes this ordering directly.
package roster

import (
	"context"
	"fmt"

	"shoproute/pkg/storage"

	"github.com/sirupsen/logrus"
)

type Service struct {
	db  *storage.DB
	log *logrus.Logger
}

func New(db *storage.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

// List returns roster entries ascending by preference order.
func (s *Service) List(ctx context.Context) ([]storage.RosterEntry, error) {
	return s.db.ListRoster(ctx)
}

// Add appends a store at the end of the roster (order = current count).
// Write failures are logged and reported as false, never propagated.
func (s *Service) Add(ctx context.Context, storeID string) bool {
	n, err := s.db.CountRoster(ctx)
	if err != nil {
		s.log.Errorf("roster: count failed: %v", err)
		return false
	}
	if err := s.db.InsertRosterEntry(ctx, storeID, n); err != nil {
		s.log.Errorf("roster: could not add store %s: %v", storeID, err)
		return false
	}
	return true
}

// Remove deletes a roster entry. Remaining entries are not renumbered;
// gaps in the ordering are tolerated.
func (s *Service) Remove(ctx context.Context, entryID int64) bool {
	if err := s.db.DeleteRosterEntry(ctx, entryID); err != nil {
		s.log.Errorf("roster: could not remove entry %d: %v", entryID, err)
		return false
	}
	return true
}

// Reorder moves an entry to newIndex and renumbers the whole sequence
// contiguously, persisting the new order for every entry whose index
// changed.
func (s *Service) Reorder(ctx context.Context, entryID int64, newIndex int) error {
	entries, err := s.db.ListRoster(ctx)
	if err != nil {
		return err
	}

	from := -1
	for i, e := range entries {
		if e.ID == entryID {
			from = i
			break
		}
	}
	if from == -1 {
		return fmt.Errorf("roster: entry %d not found", entryID)
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(entries)-1 {
		newIndex = len(entries) - 1
	}

	moved := arrayMove(entries, from, newIndex)
	for i, e := range moved {
		if e.PreferenceOrder == i {
			continue
		}
		if err := s.db.UpdateRosterOrder(ctx, e.ID, i); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether a store is already on the roster.
func (s *Service) Contains(ctx context.Context, storeID string) bool {
	ok, err := s.db.RosterContains(ctx, storeID)
	if err != nil {
		s.log.Errorf("roster: membership check failed for %s: %v", storeID, err)
		return false
	}
	return ok
}

// arrayMove returns a copy of entries with the element at from moved to
// to, everything else shifted stably.
func arrayMove(entries []storage.RosterEntry, from, to int) []storage.RosterEntry {
	out := make([]storage.RosterEntry, 0, len(entries))
	out = append(out, entries[:from]...)
	out = append(out, entries[from+1:]...)
	out = append(out[:to], append([]storage.RosterEntry{entries[from]}, out[to:]...)...)
	return out
}
