package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// Store — общее in-memory состояние для локальной разработки и тестов.
// Все репозитории пакета разделяют один mutex, поэтому многошаговые
// операции над агрегатом атомарны относительно друг друга.
type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	items     map[string]domain.Item
	orders    map[string]domain.Order
	documents map[string][]domain.OrderDocument
	outbox    map[string]outboxRecord
	outboxSeq int64
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		items:     make(map[string]domain.Item),
		orders:    make(map[string]domain.Order),
		documents: make(map[string][]domain.OrderDocument),
		outbox:    make(map[string]outboxRecord),
	}
}

// DropUser удаляет пользователя напрямую, минуя репозитории.
// Нужен тестам для имитации рассогласованного агрегата
// (легаси-схема не навязывает ссылочную целостность удалению).
func (s *Store) DropUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// cloneOrder делает копию заказа с собственным слайсом позиций,
// чтобы избежать непредсказуемых мутаций извне.
func cloneOrder(order domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	order.Lines = lines
	return order
}
