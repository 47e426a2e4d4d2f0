package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// itemRepository — PostgreSQL-реализация каталога товаров. Продавец
// резолвится JOIN'ом при каждом чтении, чтобы товар всегда нёс
// актуальную проекцию продавца.
type itemRepository struct {
	db *sql.DB
}

// NewItemRepository создаёт PostgreSQL-реализацию ItemRepository.
func NewItemRepository(store *Store) domain.ItemRepository {
	return &itemRepository{db: store.DB()}
}

func (r *itemRepository) Create(item domain.Item) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, seller_id, name, description, price, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, item.ID, item.Seller.ID, item.Name, item.Description, item.Price, item.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err, "seller") {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *itemRepository) Get(id string) (domain.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	item, err := scanItem(r.db.QueryRowContext(ctx, itemSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("select item: %w", err)
	}
	return item, nil
}

func (r *itemRepository) ListBySeller(sellerID string) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, itemSelect+`
		WHERE i.seller_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) Update(item domain.Item) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET name = $1, description = $2, price = $3
		WHERE id = $4
	`, item.Name, item.Description, item.Price, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

const itemSelect = `
	SELECT i.id, i.name, i.description, i.price, i.created_at,
	       u.id, u.name, u.address, u.city, u.country
	FROM items i
	JOIN users u ON u.id = i.seller_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var item domain.Item
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Price, &item.CreatedAt,
		&item.Seller.ID, &item.Seller.Name, &item.Seller.Address, &item.Seller.City, &item.Seller.Country,
	)
	if err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

var _ domain.ItemRepository = (*itemRepository)(nil)
