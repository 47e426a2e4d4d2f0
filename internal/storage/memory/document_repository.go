package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// documentRepository — in-memory журнал документов заказа.
type documentRepository struct {
	store *Store
}

// NewDocumentRepository возвращает in-memory репозиторий документов.
func NewDocumentRepository(store *Store) domain.DocumentRepository {
	return &documentRepository{store: store}
}

func (r *documentRepository) Append(doc domain.OrderDocument) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.documents[doc.OrderID] = append(r.store.documents[doc.OrderID], doc)
	return nil
}

func (r *documentRepository) Latest(orderID string) (domain.OrderDocument, error) {
	docs, err := r.All(orderID)
	if err != nil {
		return domain.OrderDocument{}, err
	}
	return docs[0], nil
}

func (r *documentRepository) All(orderID string) ([]domain.OrderDocument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := r.store.documents[orderID]
	if len(docs) == 0 {
		return nil, domain.ErrDocumentNotFound
	}

	result := make([]domain.OrderDocument, len(docs))
	copy(result, docs)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *documentRepository) DeleteByOrder(orderID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := len(r.store.documents[orderID])
	delete(r.store.documents, orderID)
	return count, nil
}

var _ domain.DocumentRepository = (*documentRepository)(nil)
