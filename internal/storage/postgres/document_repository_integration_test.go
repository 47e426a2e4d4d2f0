package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

func TestDocumentRepository_PostgresAppendAndRead(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewDocumentRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	first := domain.OrderDocument{ID: "doc-1", OrderID: "order-1", Content: "<Invoice>v1</Invoice>", CreatedAt: now.Add(-time.Minute)}
	second := domain.OrderDocument{ID: "doc-2", OrderID: "order-1", Content: "<Invoice>v2</Invoice>", CreatedAt: now}
	other := domain.OrderDocument{ID: "doc-3", OrderID: "order-2", Content: "<Invoice>other</Invoice>", CreatedAt: now}
	for _, doc := range []domain.OrderDocument{first, second, other} {
		if err := repo.Append(doc); err != nil {
			t.Fatalf("append %s: %v", doc.ID, err)
		}
	}

	latest, err := repo.Latest("order-1")
	if err != nil {
		t.Fatalf("latest document: %v", err)
	}
	if latest.ID != second.ID || latest.Content != second.Content {
		t.Fatalf("unexpected latest document: %+v", latest)
	}

	all, err := repo.All("order-1")
	if err != nil {
		t.Fatalf("all documents: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("unexpected document history: %+v", all)
	}
}

func TestDocumentRepository_PostgresNotFound(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewDocumentRepository(store)

	if _, err := repo.Latest("order-none"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound on latest, got %v", err)
	}
	if _, err := repo.All("order-none"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound on all, got %v", err)
	}
}

func TestDocumentRepository_PostgresDeleteByOrder(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewDocumentRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	docs := []domain.OrderDocument{
		{ID: "doc-1", OrderID: "order-1", Content: "v1", CreatedAt: now.Add(-time.Minute)},
		{ID: "doc-2", OrderID: "order-1", Content: "v2", CreatedAt: now},
		{ID: "doc-3", OrderID: "order-2", Content: "other", CreatedAt: now},
	}
	for _, doc := range docs {
		if err := repo.Append(doc); err != nil {
			t.Fatalf("append %s: %v", doc.ID, err)
		}
	}

	deleted, err := repo.DeleteByOrder("order-1")
	if err != nil {
		t.Fatalf("delete by order: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted documents, got %d", deleted)
	}

	if _, err := repo.Latest("order-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("documents survived delete: %v", err)
	}
	// Чужой заказ не затронут.
	if _, err := repo.Latest("order-2"); err != nil {
		t.Fatalf("unrelated order lost its document: %v", err)
	}

	again, err := repo.DeleteByOrder("order-1")
	if err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected 0 deleted on repeat, got %d", again)
	}
}
