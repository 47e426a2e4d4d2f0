package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

func TestItemRepository_PostgresRoundTrip(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	_, seller := seedIntegrationUsers(t, store)
	repo := NewItemRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	item := domain.Item{
		ID:          "item-1",
		Name:        "Soap",
		Seller:      seller,
		Description: "lavender",
		Price:       decimal.NewFromInt(5),
		CreatedAt:   now,
	}
	if err := repo.Create(item); err != nil {
		t.Fatalf("create item: %v", err)
	}

	got, err := repo.Get(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Name != "Soap" || got.Description != "lavender" || !got.Price.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected item payload: %+v", got)
	}
	// Продавец резолвится в полную ссылку, не только в ID.
	if got.Seller.ID != seller.ID || got.Seller.Name != seller.Name {
		t.Fatalf("seller not resolved: %+v", got.Seller)
	}
}

func TestItemRepository_PostgresListBySeller(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	_, seller := seedIntegrationUsers(t, store)
	repo := NewItemRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	older := domain.Item{ID: "item-old", Name: "Table", Seller: seller, Price: decimal.NewFromInt(80), CreatedAt: now.Add(-time.Hour)}
	newer := domain.Item{ID: "item-new", Name: "Lamp", Seller: seller, Price: decimal.NewFromInt(30), CreatedAt: now}
	for _, item := range []domain.Item{older, newer} {
		if err := repo.Create(item); err != nil {
			t.Fatalf("create item %s: %v", item.ID, err)
		}
	}

	items, err := repo.ListBySeller(seller.ID)
	if err != nil {
		t.Fatalf("list by seller: %v", err)
	}
	if len(items) != 2 || items[0].ID != newer.ID || items[1].ID != older.ID {
		t.Fatalf("unexpected listing order: %+v", items)
	}

	empty, err := repo.ListBySeller("nobody")
	if err != nil {
		t.Fatalf("list for unknown seller: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty catalog, got %+v", empty)
	}
}

func TestItemRepository_PostgresUpdateAndNotFound(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	_, seller := seedIntegrationUsers(t, store)
	repo := NewItemRepository(store)

	item := domain.Item{ID: "item-1", Name: "Soap", Seller: seller, Price: decimal.NewFromInt(5)}
	if err := repo.Create(item); err != nil {
		t.Fatalf("create item: %v", err)
	}

	item.Name = "Soap XL"
	item.Price = decimal.NewFromInt(7)
	if err := repo.Update(item); err != nil {
		t.Fatalf("update item: %v", err)
	}
	got, err := repo.Get(item.ID)
	if err != nil {
		t.Fatalf("get updated item: %v", err)
	}
	if got.Name != "Soap XL" || !got.Price.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("update was not persisted: %+v", got)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound on get, got %v", err)
	}
	if err := repo.Update(domain.Item{ID: "missing", Price: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound on update, got %v", err)
	}
}
