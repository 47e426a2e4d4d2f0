package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
)

func TestDocumentRepository_AppendAndLatest(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewDocumentRepository(store)
	now := time.Now().UTC()

	for i, doc := range []domain.OrderDocument{
		{ID: "doc-1", OrderID: "order-1", Content: "<Invoice>v1</Invoice>", CreatedAt: now},
		{ID: "doc-2", OrderID: "order-1", Content: "<Invoice>v2</Invoice>", CreatedAt: now.Add(time.Second)},
		{ID: "doc-3", OrderID: "order-2", Content: "<Invoice>other</Invoice>", CreatedAt: now},
	} {
		if err := repo.Append(doc); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	latest, err := repo.Latest("order-1")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest.ID != "doc-2" {
		t.Fatalf("expected doc-2 to be latest, got %s", latest.ID)
	}

	all, err := repo.All("order-1")
	if err != nil {
		t.Fatalf("all failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "doc-2" || all[1].ID != "doc-1" {
		t.Fatalf("expected newest-first listing, got %+v", all)
	}
}

func TestDocumentRepository_LatestEmpty(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewDocumentRepository(store)

	if _, err := repo.Latest("order-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentRepository_DeleteByOrder(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewDocumentRepository(store)
	now := time.Now().UTC()

	_ = repo.Append(domain.OrderDocument{ID: "doc-1", OrderID: "order-1", Content: "a", CreatedAt: now})
	_ = repo.Append(domain.OrderDocument{ID: "doc-2", OrderID: "order-1", Content: "b", CreatedAt: now})

	deleted, err := repo.DeleteByOrder("order-1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
	if _, err := repo.All("order-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("documents survived delete: %v", err)
	}
}
