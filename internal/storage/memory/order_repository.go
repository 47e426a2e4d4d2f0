package memory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// orderRepository — in-memory реализация агрегатного хранилища заказов.
// Один mutex на Store делает многошаговые операции атомарными, что
// воспроизводит транзакционную семантику SQL-реализации.
type orderRepository struct {
	store *Store
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{store: store}
}

// Create сохраняет агрегат целиком. Все проверки выполняются до первой
// мутации, поэтому сбой не оставляет в хранилище частичного заказа.
func (r *orderRepository) Create(order domain.Order) (domain.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.orders[order.ID]; exists {
		return domain.Order{}, domain.ErrOrderAlreadyExists
	}
	if _, ok := r.store.users[order.Buyer.ID]; !ok {
		return domain.Order{}, domain.ErrUserNotFound
	}

	order = cloneOrder(order)
	pending := make([]domain.Item, 0)
	for i := range order.Lines {
		item := order.Lines[i].Item
		if item.ID == "" {
			// Ленивый товар: продавец обязан существовать, иначе весь
			// агрегат не сохраняется.
			if _, ok := r.store.users[item.Seller.ID]; !ok {
				return domain.Order{}, domain.ErrUserNotFound
			}
			item.ID = uuid.NewString()
			item.CreatedAt = order.CreatedAt
			order.Lines[i].Item = item
			pending = append(pending, item)
			continue
		}
		if _, ok := r.store.items[item.ID]; !ok {
			return domain.Order{}, domain.ErrItemNotFound
		}
	}

	for _, item := range pending {
		r.store.items[item.ID] = item
	}
	r.store.orders[order.ID] = order

	return cloneOrder(order), nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.assembleOrder(id)
}

func (r *orderRepository) ListByBuyer(buyerID string) ([]domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := make([]string, 0)
	for id, order := range r.store.orders {
		if order.Buyer.ID == buyerID {
			ids = append(ids, id)
		}
	}

	result := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := r.store.assembleOrder(id)
		if err != nil {
			// Легаси-поведение: один несобираемый заказ прячет весь список,
			// чтобы не возвращать покупателю неполную историю.
			return nil, domain.ErrOrderNotFound
		}
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

func (r *orderRepository) Update(order domain.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	if _, ok := r.store.users[order.Buyer.ID]; !ok {
		return domain.ErrUserNotFound
	}

	// Как и в Create: сначала валидируем все позиции, и только потом
	// коммитим лениво созданные товары, чтобы сбой на поздней позиции
	// не оставил в каталоге осиротевших записей.
	order = cloneOrder(order)
	pending := make([]domain.Item, 0)
	for i := range order.Lines {
		item := order.Lines[i].Item
		if item.ID == "" {
			if _, ok := r.store.users[item.Seller.ID]; !ok {
				return domain.ErrUserNotFound
			}
			item.ID = uuid.NewString()
			item.CreatedAt = order.LastEdited
			order.Lines[i].Item = item
			pending = append(pending, item)
			continue
		}
		if _, ok := r.store.items[item.ID]; !ok {
			return domain.ErrItemNotFound
		}
	}

	for _, item := range pending {
		r.store.items[item.ID] = item
	}
	order.Version++
	order.CreatedAt = current.CreatedAt
	r.store.orders[order.ID] = order
	return nil
}

func (r *orderRepository) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.store.orders, id)
	return nil
}

func (r *orderRepository) SetLatestDocument(orderID, documentID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.LatestDocumentID = documentID
	r.store.orders[orderID] = order
	return nil
}

// assembleOrder пересобирает агрегат, резолвя покупателя и товары из
// актуального состояния каталога. Любая пропавшая подзапись превращает
// весь заказ в ErrOrderNotFound. Вызывается под уже взятым mutex.
func (s *Store) assembleOrder(id string) (domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order = cloneOrder(order)

	buyer, ok := s.users[order.Buyer.ID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Buyer = buyer.Ref()

	for i := range order.Lines {
		item, err := s.resolveItem(order.Lines[i].Item.ID)
		if err != nil {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		order.Lines[i].Item = item
	}

	return order, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
