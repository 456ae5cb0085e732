package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/localstore"
)

// SnapshotKey is the namespaced local-storage record holding the persisted view.
const SnapshotKey = "storefront-state"

// Snapshot is the durable subset of store state. Transient UI flags are
// deliberately absent from the type so they can never leak into storage.
type Snapshot struct {
	Cart          []domain.CartLine `json:"cart"`
	Wishlist      []string          `json:"wishlist"`
	LikedProducts []string          `json:"likedProducts"`
	User          *domain.User      `json:"user"`
}

// Persister saves and loads the durable snapshot.
type Persister interface {
	// Save replaces the stored snapshot.
	Save(Snapshot) error
	// Load returns the stored snapshot; ok is false when none exists.
	Load() (snap Snapshot, ok bool, err error)
}

// LocalPersister stores the snapshot as a single JSON blob in a localstore.
type LocalPersister struct {
	records *localstore.Store
	key     string
}

// NewLocalPersister wires a persister over the given localstore.
func NewLocalPersister(records *localstore.Store) (*LocalPersister, error) {
	if records == nil {
		return nil, errors.New("store: localstore is required")
	}
	return &LocalPersister{records: records, key: SnapshotKey}, nil
}

// Save implements Persister.
func (p *LocalPersister) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}
	return p.records.Set(p.key, data)
}

// Load implements Persister. A missing record is not an error; a corrupt one
// is reported so the caller can decide to start empty.
func (p *LocalPersister) Load() (Snapshot, bool, error) {
	data, err := p.records.Get(p.key)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("store: decode snapshot: %w", err)
	}
	return snap, true, nil
}
