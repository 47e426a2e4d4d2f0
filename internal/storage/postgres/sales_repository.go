package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// salesRepository — агрегирующие запросы по продажам. Считаются все
// позиции всех заказов независимо от статуса: отменённый заказ не
// вычитается из статистики.
type salesRepository struct {
	db *sql.DB
}

// NewSalesRepository создаёт PostgreSQL-реализацию SalesRepository.
func NewSalesRepository(store *Store) domain.SalesRepository {
	return &salesRepository{db: store.DB()}
}

func (r *salesRepository) SellerSales(sellerID string) ([]domain.ItemSales, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.userExists(ctx, sellerID); err != nil {
		return nil, err
	}

	// LEFT JOIN сохраняет товары без единой продажи с нулём.
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.name, i.description, i.price,
		       COALESCE(SUM(l.qty), 0) AS sold
		FROM items i
		LEFT JOIN order_lines l ON l.item_id = i.id
		WHERE i.seller_id = $1
		GROUP BY i.id, i.name, i.description, i.price
		ORDER BY i.id ASC
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("seller sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.ItemSales, 0)
	for rows.Next() {
		var entry domain.ItemSales
		if err := rows.Scan(&entry.ItemID, &entry.Name, &entry.Description, &entry.Price, &entry.AmountSold); err != nil {
			return nil, fmt.Errorf("scan item sales: %w", err)
		}
		sales = append(sales, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item sales: %w", err)
	}
	return sales, nil
}

func (r *salesRepository) PopularItems(limit int) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Только реально продававшиеся товары, без нулевого хвоста.
	query := `
		SELECT i.id, i.name, i.description, i.price, i.created_at,
		       u.id, u.name, u.address, u.city, u.country
		FROM order_lines l
		JOIN items i ON i.id = l.item_id
		JOIN users u ON u.id = i.seller_id
		GROUP BY i.id, i.name, i.description, i.price, i.created_at,
		         u.id, u.name, u.address, u.city, u.country
		ORDER BY SUM(l.qty) DESC, i.id ASC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	return r.queryItems(ctx, query, args...)
}

func (r *salesRepository) TopSellers(buyerID string, limit int) ([]domain.SellerVolume, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT i.seller_id, SUM(l.qty) AS sold
		FROM orders o
		JOIN order_lines l ON l.order_id = o.id
		JOIN items i ON i.id = l.item_id
		WHERE o.buyer_id = $1
		GROUP BY i.seller_id
		ORDER BY sold DESC, i.seller_id ASC
	`
	args := []any{buyerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	defer rows.Close()

	sellers := make([]domain.SellerVolume, 0)
	for rows.Next() {
		var volume domain.SellerVolume
		if err := rows.Scan(&volume.SellerID, &volume.Quantity); err != nil {
			return nil, fmt.Errorf("scan seller volume: %w", err)
		}
		sellers = append(sellers, volume)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seller volumes: %w", err)
	}
	return sellers, nil
}

func (r *salesRepository) PurchasedItemNames(buyerID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT i.name
		FROM orders o
		JOIN order_lines l ON l.order_id = o.id
		JOIN items i ON i.id = l.item_id
		WHERE o.buyer_id = $1
		ORDER BY i.name ASC
	`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("purchased item names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan item name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item names: %w", err)
	}
	return names, nil
}

func (r *salesRepository) SellerItemsBySales(sellerID string) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Товары без продаж остаются в выдаче, в хвосте рейтинга.
	return r.queryItems(ctx, `
		SELECT i.id, i.name, i.description, i.price, i.created_at,
		       u.id, u.name, u.address, u.city, u.country
		FROM items i
		JOIN users u ON u.id = i.seller_id
		LEFT JOIN order_lines l ON l.item_id = i.id
		WHERE i.seller_id = $1
		GROUP BY i.id, i.name, i.description, i.price, i.created_at,
		         u.id, u.name, u.address, u.city, u.country
		ORDER BY COALESCE(SUM(l.qty), 0) DESC, i.id ASC
	`, sellerID)
}

func (r *salesRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ranked items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ranked item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranked items: %w", err)
	}
	return items, nil
}

func (r *salesRepository) userExists(ctx context.Context, id string) error {
	var found string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1`, id).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("check user exists: %w", err)
	}
	return nil
}

var _ domain.SalesRepository = (*salesRepository)(nil)
