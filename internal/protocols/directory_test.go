package protocols

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	clierr "github.com/nvalverde/bridgescout/internal/errors"
	"github.com/nvalverde/bridgescout/internal/model"
)

func TestDirectoryFetchesOnce(t *testing.T) {
	lister := &staticLister{entries: []model.ProtocolEntry{{Slug: "stargate", Name: "Stargate"}}}
	dir := NewDirectory(lister, zerolog.Nop())

	for i := 0; i < 3; i++ {
		entries, err := dir.Entries(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("entries = %d, want 1", len(entries))
		}
	}
	if lister.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", lister.calls)
	}
}

func TestDirectoryFailureDoesNotPoisonCache(t *testing.T) {
	lister := &staticLister{err: clierr.New(clierr.CodeUnavailable, "down")}
	dir := NewDirectory(lister, zerolog.Nop())

	if _, err := dir.Entries(context.Background()); err == nil {
		t.Fatal("expected error on first fetch")
	}

	lister.err = nil
	lister.entries = []model.ProtocolEntry{{Slug: "hop-protocol", Name: "Hop Protocol"}}
	entries, err := dir.Entries(context.Background())
	if err != nil {
		t.Fatalf("retry after failure should succeed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
}

func TestDirectoryReset(t *testing.T) {
	lister := &staticLister{entries: []model.ProtocolEntry{{Slug: "stargate", Name: "Stargate"}}}
	dir := NewDirectory(lister, zerolog.Nop())

	if _, err := dir.Entries(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir.Reset()
	if _, err := dir.Entries(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("upstream calls = %d, want refetch after Reset", lister.calls)
	}
}
