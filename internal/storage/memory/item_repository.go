package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// itemRepository — in-memory реализация каталога товаров.
type itemRepository struct {
	store *Store
}

// NewItemRepository возвращает in-memory репозиторий каталога.
func NewItemRepository(store *Store) domain.ItemRepository {
	return &itemRepository{store: store}
}

func (r *itemRepository) Create(item domain.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[item.Seller.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.store.items[item.ID] = item
	return nil
}

func (r *itemRepository) Get(id string) (domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.resolveItem(id)
}

func (r *itemRepository) ListBySeller(sellerID string) ([]domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.users[sellerID]; !ok {
		return nil, domain.ErrUserNotFound
	}

	result := make([]domain.Item, 0)
	for _, item := range r.store.items {
		if item.Seller.ID != sellerID {
			continue
		}
		resolved, err := r.store.resolveItem(item.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, resolved)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *itemRepository) Update(item domain.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	r.store.items[item.ID] = item
	return nil
}

// resolveItem возвращает товар со свежей проекцией продавца.
// Вызывается под уже взятым mutex.
func (s *Store) resolveItem(id string) (domain.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	seller, ok := s.users[item.Seller.ID]
	if !ok {
		return domain.Item{}, domain.ErrUserNotFound
	}
	item.Seller = seller.Ref()
	return item, nil
}

var _ domain.ItemRepository = (*itemRepository)(nil)
