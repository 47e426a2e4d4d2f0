package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// documentRepository — PostgreSQL-реализация append-only журнала
// документов заказа. Записи не изменяются после вставки.
type documentRepository struct {
	db *sql.DB
}

// NewDocumentRepository создаёт PostgreSQL-реализацию DocumentRepository.
func NewDocumentRepository(store *Store) domain.DocumentRepository {
	return &documentRepository{db: store.DB()}
}

func (r *documentRepository) Append(doc domain.OrderDocument) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_documents (id, order_id, content, created_at)
		VALUES ($1,$2,$3,$4)
	`, doc.ID, doc.OrderID, doc.Content, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order document: %w", err)
	}
	return nil
}

func (r *documentRepository) Latest(orderID string) (domain.OrderDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var doc domain.OrderDocument
	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, content, created_at
		FROM order_documents
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, orderID).Scan(&doc.ID, &doc.OrderID, &doc.Content, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderDocument{}, domain.ErrDocumentNotFound
		}
		return domain.OrderDocument{}, fmt.Errorf("select latest document: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) All(orderID string) ([]domain.OrderDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, content, created_at
		FROM order_documents
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.OrderDocument, 0)
	for rows.Next() {
		var doc domain.OrderDocument
		if err := rows.Scan(&doc.ID, &doc.OrderID, &doc.Content, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return docs, nil
}

func (r *documentRepository) DeleteByOrder(orderID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM order_documents WHERE order_id = $1
	`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete order documents: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

var _ domain.DocumentRepository = (*documentRepository)(nil)
