// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pdiddy/study-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.SessionConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSession(id string) Session {
	return Session{
		ID:       id,
		FileName: "photosynthesis.pdf",
		FilePath: "uploads/photosynthesis.pdf",
		Extraction: types.Extraction{
			Text:           "Photosynthesis converts light energy into chemical energy.",
			PageCount:      12,
			ExtractedPages: 12,
			WordCount:      8,
			MethodsUsed:    []string{"llm_parse"},
			Status:         types.ExtractionOK,
		},
		Profile: types.KeywordProfile{
			Topic:            "Photosynthesis",
			ResearchKeywords: []string{"photosynthesis", "chlorophyll"},
			AllKeywords:      []string{"photosynthesis", "chlorophyll", "calvin cycle"},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleSession(DefaultID)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, DefaultID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.FileName != "photosynthesis.pdf" {
		t.Errorf("file name = %q", got.FileName)
	}
	if got.Extraction.Status != types.ExtractionOK || got.Extraction.PageCount != 12 {
		t.Errorf("extraction = %+v", got.Extraction)
	}
	if len(got.Extraction.MethodsUsed) != 1 || got.Extraction.MethodsUsed[0] != "llm_parse" {
		t.Errorf("methods = %v", got.Extraction.MethodsUsed)
	}
	if got.Profile.Topic != "Photosynthesis" || len(got.Profile.AllKeywords) != 3 {
		t.Errorf("profile = %+v", got.Profile)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetMissing(t *testing.T) {
	store := testStore(t)

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveUpsertKeepsCreatedAt(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleSession(DefaultID)); err != nil {
		t.Fatal(err)
	}
	first, err := store.Get(ctx, DefaultID)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)

	updated := first
	updated.FileName = "replacement.pdf"
	if err := store.Save(ctx, updated); err != nil {
		t.Fatal(err)
	}

	second, err := store.Get(ctx, DefaultID)
	if err != nil {
		t.Fatal(err)
	}
	if second.FileName != "replacement.pdf" {
		t.Errorf("file name = %q, want replacement", second.FileName)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated at not advanced: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestSaveEmptyID(t *testing.T) {
	store := testStore(t)
	if err := store.Save(context.Background(), Session{}); err == nil {
		t.Fatal("expected error for empty session ID")
	}
}

func TestSaveProfile(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleSession(DefaultID)); err != nil {
		t.Fatal(err)
	}

	newProfile := types.KeywordProfile{Topic: "Cellular respiration"}
	if err := store.SaveProfile(ctx, DefaultID, newProfile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	got, err := store.Get(ctx, DefaultID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Profile.Topic != "Cellular respiration" {
		t.Errorf("topic = %q", got.Profile.Topic)
	}

	if err := store.SaveProfile(ctx, "nope", newProfile); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for unknown session", err)
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleSession(DefaultID)); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, DefaultID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, DefaultID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}

	// Deleting again is fine.
	if err := store.Delete(ctx, DefaultID); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleSession("older")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := store.Save(ctx, sampleSession("newer")); err != nil {
		t.Fatal(err)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d sessions, want 2", len(infos))
	}
	if infos[0].ID != "newer" || infos[1].ID != "older" {
		t.Errorf("order = %s, %s", infos[0].ID, infos[1].ID)
	}
	if infos[0].Topic != "Photosynthesis" || infos[0].WordCount != 8 {
		t.Errorf("info = %+v", infos[0])
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(types.SessionConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, sampleSession(DefaultID)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewStore(types.SessionConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, DefaultID)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.FileName != "photosynthesis.pdf" {
		t.Errorf("file name = %q", got.FileName)
	}
}
