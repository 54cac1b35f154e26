// Package list holds the user's shopping list: priced (product, store)
// picks persisted to a single JSON file that is rewritten on every
// mutation, the durable equivalent of the old fixed localStorage key.
package list

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FileName is the fixed name of the persisted list inside the data dir.
const FileName = "shopping_list.json"

// Item is one selected (product, store, price) tuple. Price and names
// are snapshots taken at add time; later catalog changes don't touch
// existing items.
type Item struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Store       string  `json:"store"`
	StoreID     string  `json:"store_id,omitempty"`
	Price       float64 `json:"price"`
	AddedAt     string  `json:"added_at"`
	Checked     bool    `json:"checked"`
}

// StoreKey identifies the store an item belongs to. Items carrying a
// store id are keyed by it; name is the fallback for id-less items and
// otherwise purely a display attribute.
func (it Item) StoreKey() string {
	if it.StoreID != "" {
		return it.StoreID
	}
	return it.Store
}

// Group is the items of one store, in encounter order.
type Group struct {
	Key   string
	Items []Item
}

// Store owns the persisted shopping list. All operations are
// synchronous: mutations rewrite the backing file before returning.
type Store struct {
	mu    sync.Mutex
	path  string
	items []Item
	log   *logrus.Logger

	now    func() time.Time
	randID func() int
}

// Open loads the list from path. A missing file, a literal "null" or
// "undefined", or malformed JSON all yield an empty list; corrupt state
// is never surfaced as an error.
func Open(path string, log *logrus.Logger) *Store {
	s := &Store{
		path:   path,
		log:    log,
		now:    time.Now,
		randID: func() int { return rand.Intn(10000) },
	}
	s.items = s.load()
	return s
}

func (s *Store) load() []Item {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || trimmed == "undefined" {
		return nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warnf("discarding malformed shopping list at %s: %v", s.path, err)
		return nil
	}
	return items
}

func (s *Store) persist() {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		s.log.Errorf("could not encode shopping list: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Errorf("could not create data dir: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Errorf("could not write shopping list: %v", err)
	}
}

// Add appends an item, assigning a fresh id and timestamp. Adding a
// (product, store) pair that is already on the list is a no-op that
// returns the existing item untouched.
func (s *Store) Add(item Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ProductID == item.ProductID && existing.StoreKey() == item.StoreKey() {
			return existing
		}
	}

	// Millisecond clock plus a random suffix so rapid successive adds
	// can't collide.
	item.ID = fmt.Sprintf("%d-%04d", s.now().UnixMilli(), s.randID())
	item.AddedAt = s.now().UTC().Format(time.RFC3339)
	item.Checked = false
	s.items = append(s.items, item)
	s.persist()
	return item
}

// Remove drops the item with the given id. Unknown ids are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	changed := false
	for _, it := range s.items {
		if it.ID == id {
			changed = true
			continue
		}
		kept = append(kept, it)
	}
	s.items = kept
	if changed {
		s.persist()
	}
}

// Toggle flips the checked flag of the item with the given id.
func (s *Store) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Checked = !s.items[i].Checked
			s.persist()
			return
		}
	}
}

// Clear empties the list and deletes the persisted file entirely.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Errorf("could not remove shopping list file: %v", err)
	}
}

// Items returns a copy of the current list.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// TotalCost sums every item's price snapshot. Checked state does not
// exclude an item from the total.
func (s *Store) TotalCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, it := range s.items {
		total += it.Price
	}
	return total
}

// ItemsByStore groups items by store key, preserving encounter order
// both across groups and within each group.
func (s *Store) ItemsByStore() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := make(map[string]int)
	var groups []Group
	for _, it := range s.items {
		key := it.StoreKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
