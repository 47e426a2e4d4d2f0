package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// salesRepository — in-memory read-model аналитики продаж.
// Агрегация считается на лету по текущему состоянию хранилища;
// учитываются заказы любого статуса, как и в SQL-реализации.
type salesRepository struct {
	store *Store
}

// NewSalesRepository возвращает in-memory реализацию SalesRepository.
func NewSalesRepository(store *Store) domain.SalesRepository {
	return &salesRepository{store: store}
}

func (r *salesRepository) SellerSales(sellerID string) ([]domain.ItemSales, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.users[sellerID]; !ok {
		return nil, domain.ErrUserNotFound
	}

	sold := r.store.soldByItem()
	result := make([]domain.ItemSales, 0)
	for id, item := range r.store.items {
		if item.Seller.ID != sellerID {
			continue
		}
		result = append(result, domain.ItemSales{
			ItemID:      id,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			AmountSold:  sold[id],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ItemID < result[j].ItemID })
	return result, nil
}

func (r *salesRepository) PopularItems(limit int) ([]domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sold := r.store.soldByItem()
	ids := make([]string, 0, len(sold))
	for id, qty := range sold {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if sold[ids[i]] != sold[ids[j]] {
			return sold[ids[i]] > sold[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	result := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		item, err := r.store.resolveItem(id)
		if err != nil {
			// Товар пропал из каталога между заказом и запросом;
			// просто не включаем его в рейтинг.
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *salesRepository) TopSellers(buyerID string, limit int) ([]domain.SellerVolume, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	volumes := make(map[string]int64)
	for _, order := range r.store.orders {
		if order.Buyer.ID != buyerID {
			continue
		}
		for _, line := range order.Lines {
			item, ok := r.store.items[line.Item.ID]
			if !ok {
				continue
			}
			volumes[item.Seller.ID] += int64(line.Qty)
		}
	}

	result := make([]domain.SellerVolume, 0, len(volumes))
	for sellerID, qty := range volumes {
		result = append(result, domain.SellerVolume{SellerID: sellerID, Quantity: qty})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Quantity != result[j].Quantity {
			return result[i].Quantity > result[j].Quantity
		}
		return result[i].SellerID < result[j].SellerID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *salesRepository) PurchasedItemNames(buyerID string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, order := range r.store.orders {
		if order.Buyer.ID != buyerID {
			continue
		}
		for _, line := range order.Lines {
			name := line.Item.Name
			if item, ok := r.store.items[line.Item.ID]; ok {
				name = item.Name
			}
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(seen))
	for name := range seen {
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

func (r *salesRepository) SellerItemsBySales(sellerID string) ([]domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sold := r.store.soldByItem()
	ids := make([]string, 0)
	for id, item := range r.store.items {
		if item.Seller.ID == sellerID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if sold[ids[i]] != sold[ids[j]] {
			return sold[ids[i]] > sold[ids[j]]
		}
		return ids[i] < ids[j]
	})

	result := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		item, err := r.store.resolveItem(id)
		if err != nil {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

// soldByItem суммирует проданное количество по каждому товару.
// Вызывается под уже взятым mutex.
func (s *Store) soldByItem() map[string]int64 {
	sold := make(map[string]int64)
	for _, order := range s.orders {
		for _, line := range order.Lines {
			sold[line.Item.ID] += int64(line.Qty)
		}
	}
	return sold
}

var _ domain.SalesRepository = (*salesRepository)(nil)
