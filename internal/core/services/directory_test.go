package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven/mocks"
)

func TestDirectoryService_List(t *testing.T) {
	client := mocks.NewMockAssistantClient()
	client.Collections = []domain.Collection{
		{ID: "vs-1", Name: "Statutes", Status: "completed", FileCount: 3},
		{ID: "vs-2", Name: "Handbooks", Status: "in_progress", FileCount: 1},
	}
	svc := NewDirectoryService(client, time.Minute)

	collections, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(collections) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(collections))
	}
	if collections[0].Name != "Statutes" {
		t.Errorf("expected first collection Statutes, got %s", collections[0].Name)
	}
}

func TestDirectoryService_List_FailsSoft(t *testing.T) {
	client := mocks.NewMockAssistantClient()
	client.ListCollectionsErr = errors.New("connection refused")
	svc := NewDirectoryService(client, time.Minute)

	collections, err := svc.List(context.Background())
	if err == nil {
		t.Error("expected error to be surfaced to the caller")
	}
	if collections == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(collections) != 0 {
		t.Errorf("expected empty slice, got %d entries", len(collections))
	}
}

func TestDirectoryService_List_CachesWithinTTL(t *testing.T) {
	client := mocks.NewMockAssistantClient()
	client.Collections = []domain.Collection{{ID: "vs-1", Name: "Statutes"}}
	svc := NewDirectoryService(client, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := svc.List(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if calls := client.ListCollectionCalls(); calls != 1 {
		t.Errorf("expected 1 remote call within TTL, got %d", calls)
	}
}

func TestDirectoryService_List_ErrorNotCached(t *testing.T) {
	client := mocks.NewMockAssistantClient()
	client.ListCollectionsErr = errors.New("boom")
	svc := NewDirectoryService(client, time.Minute)

	_, _ = svc.List(context.Background())

	// Remote recovers; a fresh listing should be fetched, not the failure.
	client.ListCollectionsErr = nil
	client.Collections = []domain.Collection{{ID: "vs-1", Name: "Statutes"}}

	collections, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if len(collections) != 1 {
		t.Errorf("expected 1 collection after recovery, got %d", len(collections))
	}
}
