package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/maison-aurelia/storefront/internal/domain"
	"github.com/maison-aurelia/storefront/internal/platform/localstore"
)

func newLocalPersister(t *testing.T) *LocalPersister {
	t.Helper()
	records, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("localstore: %v", err)
	}
	p, err := NewLocalPersister(records)
	if err != nil {
		t.Fatalf("persister: %v", err)
	}
	return p
}

func TestLocalPersisterRoundTrip(t *testing.T) {
	p := newLocalPersister(t)

	snap := Snapshot{
		Cart: []domain.CartLine{
			{Product: product("p1", 149.99), Quantity: 2},
			{Product: product("p2", 12), Quantity: 1},
		},
		Wishlist:      []string{"p3", "p4"},
		LikedProducts: []string{"p1"},
		User: &domain.User{
			ID:        "u1",
			Email:     "a@b.com",
			FirstName: "Ada",
			LastName:  "Byron",
			Role:      domain.RoleCustomer,
			CreatedAt: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
	}

	if err := p.Save(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := p.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected snapshot present")
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", got, snap)
	}
}

func TestLocalPersisterLoadMissing(t *testing.T) {
	p := newLocalPersister(t)

	_, ok, err := p.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatal("expected no snapshot")
	}
}

func TestLocalPersisterCorruptRecord(t *testing.T) {
	records, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("localstore: %v", err)
	}
	if err := records.Set(SnapshotKey, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	p, err := NewLocalPersister(records)
	if err != nil {
		t.Fatalf("persister: %v", err)
	}

	if _, _, err := p.Load(); err == nil {
		t.Fatal("expected decode error for corrupt record")
	}
}
