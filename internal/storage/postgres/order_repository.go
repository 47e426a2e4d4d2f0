package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// orderRepository — PostgreSQL-реализация агрегатного хранилища заказов.
// Каждая запись агрегата выполняется в одной транзакции: откат
// гарантирован deferred-rollback'ом на любом пути выхода с ошибкой.
// Чтение собирает агрегат внутри read-only транзакции, чтобы между
// запросами заголовка и позиций не вклинилась конкурентная запись.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertLazyItems(ctx, tx, &order, order.CreatedAt); err != nil {
		return domain.Order{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO billing_details (id, card_number, cvv, expiry)
		VALUES ($1,$2,$3,$4)
	`, order.Billing.ID, order.Billing.CardNumber, order.Billing.CVV, order.Billing.Expiry)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert billing details: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO delivery_instructions (id, address, window_start, window_end)
		VALUES ($1,$2,$3,$4)
	`, order.Delivery.ID, order.Delivery.Address, nullTime(order.Delivery.WindowStart), nullTime(order.Delivery.WindowEnd))
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert delivery instructions: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, buyer_id, status, billing_id, delivery_id,
			total_price, latest_document_id, version, created_at, last_edited
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		order.ID, order.Buyer.ID, string(order.Status), order.Billing.ID, order.Delivery.ID,
		order.TotalPrice, order.LatestDocumentID, order.Version, order.CreatedAt, order.LastEdited,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Order{}, domain.ErrOrderAlreadyExists
		}
		if isForeignKeyViolation(err, "buyer") {
			return domain.Order{}, domain.ErrUserNotFound
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err = insertLines(ctx, tx, order); err != nil {
		return domain.Order{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit create order: %w", err)
	}

	return order, nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin read tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	order, err := getOrderTx(ctx, tx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderRepository) ListByBuyer(buyerID string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT id
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC, id DESC
	`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate order ids: %w", err)
	}
	rows.Close()

	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := getOrderTx(ctx, tx, id)
		if err != nil {
			// Один несобираемый заказ прячет весь список: покупатель
			// не должен молча недосчитаться заказа в своей истории.
			return nil, domain.ErrOrderNotFound
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *orderRepository) Update(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET buyer_id = $1,
		    status = $2,
		    total_price = $3,
		    latest_document_id = $4,
		    version = version + 1,
		    last_edited = $5
		WHERE id = $6
		  AND version = $7
	`,
		order.Buyer.ID,
		string(order.Status),
		order.TotalPrice,
		order.LatestDocumentID,
		order.LastEdited,
		order.ID,
		order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order header: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, checkErr := orderExistsTx(ctx, tx, order.ID)
		if checkErr != nil {
			err = checkErr
			return err
		}
		if !exists {
			err = domain.ErrOrderNotFound
			return err
		}
		err = domain.ErrOrderVersionConflict
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE billing_details
		SET card_number = $1, cvv = $2, expiry = $3
		WHERE id = $4
	`, order.Billing.CardNumber, order.Billing.CVV, order.Billing.Expiry, order.Billing.ID)
	if err != nil {
		return fmt.Errorf("update billing details: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE delivery_instructions
		SET address = $1, window_start = $2, window_end = $3
		WHERE id = $4
	`, order.Delivery.Address, nullTime(order.Delivery.WindowStart), nullTime(order.Delivery.WindowEnd), order.Delivery.ID)
	if err != nil {
		return fmt.Errorf("update delivery instructions: %w", err)
	}

	// Позиции меняются полной заменой: delete-all, re-insert.
	if _, err = tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	if err = insertLazyItems(ctx, tx, &order, order.LastEdited); err != nil {
		return err
	}
	if err = insertLines(ctx, tx, order); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update order: %w", err)
	}

	return nil
}

func (r *orderRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var billingID, deliveryID string
	err = tx.QueryRowContext(ctx, `
		SELECT billing_id, delivery_id
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&billingID, &deliveryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrOrderNotFound
			return err
		}
		return fmt.Errorf("select order for delete: %w", err)
	}

	// Порядок удаления фиксирован: позиции, заголовок, реквизиты, доставка.
	if _, err = tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order header: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM billing_details WHERE id = $1`, billingID); err != nil {
		return fmt.Errorf("delete billing details: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM delivery_instructions WHERE id = $1`, deliveryID); err != nil {
		return fmt.Errorf("delete delivery instructions: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete order: %w", err)
	}

	return nil
}

func (r *orderRepository) SetLatestDocument(orderID, documentID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET latest_document_id = $2
		WHERE id = $1
	`, orderID, documentID)
	if err != nil {
		return fmt.Errorf("set latest document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// getOrderTx пересобирает агрегат в рамках переданной транзакции.
func getOrderTx(ctx context.Context, tx *sql.Tx, id string) (domain.Order, error) {
	var (
		order       domain.Order
		status      string
		windowStart sql.NullTime
		windowEnd   sql.NullTime
	)

	// INNER JOIN по покупателю и подзаписям: исчезновение любой из них
	// превращает весь агрегат в not-found.
	err := tx.QueryRowContext(ctx, `
		SELECT o.id, o.status, o.total_price, o.latest_document_id,
		       o.version, o.created_at, o.last_edited,
		       u.id, u.name, u.address, u.city, u.country,
		       b.id, b.card_number, b.cvv, b.expiry,
		       d.id, d.address, d.window_start, d.window_end
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		JOIN billing_details b ON b.id = o.billing_id
		JOIN delivery_instructions d ON d.id = o.delivery_id
		WHERE o.id = $1
	`, id).Scan(
		&order.ID, &status, &order.TotalPrice, &order.LatestDocumentID,
		&order.Version, &order.CreatedAt, &order.LastEdited,
		&order.Buyer.ID, &order.Buyer.Name, &order.Buyer.Address, &order.Buyer.City, &order.Buyer.Country,
		&order.Billing.ID, &order.Billing.CardNumber, &order.Billing.CVV, &order.Billing.Expiry,
		&order.Delivery.ID, &order.Delivery.Address, &windowStart, &windowEnd,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order aggregate: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	if windowStart.Valid {
		order.Delivery.WindowStart = windowStart.Time.UTC()
	}
	if windowEnd.Valid {
		order.Delivery.WindowEnd = windowEnd.Time.UTC()
	}

	lines, err := loadLinesTx(ctx, tx, id)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

// loadLinesTx загружает позиции заказа с резолвом товара и продавца.
// LEFT JOIN с проверкой на NULL нужен, чтобы пропавший товар или
// продавец давал not-found, а не молча выпавшую позицию.
func loadLinesTx(ctx context.Context, tx *sql.Tx, orderID string) ([]domain.OrderLine, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT l.qty,
		       i.id, i.name, i.description, i.price, i.created_at,
		       u.id, u.name, u.address, u.city, u.country
		FROM order_lines l
		LEFT JOIN items i ON i.id = l.item_id
		LEFT JOIN users u ON u.id = i.seller_id
		WHERE l.order_id = $1
		ORDER BY l.position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var (
			line                      domain.OrderLine
			itemID                    sql.NullString
			sellerID                  sql.NullString
			itemName, itemDescription sql.NullString
			sellerName, sellerAddress sql.NullString
			sellerCity, sellerCountry sql.NullString
			itemCreatedAt             sql.NullTime
		)
		if err := rows.Scan(
			&line.Qty,
			&itemID, &itemName, &itemDescription, &line.Item.Price, &itemCreatedAt,
			&sellerID, &sellerName, &sellerAddress, &sellerCity, &sellerCountry,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if !itemID.Valid || !sellerID.Valid {
			return nil, domain.ErrOrderNotFound
		}
		line.Item.ID = itemID.String
		line.Item.Name = itemName.String
		line.Item.Description = itemDescription.String
		if itemCreatedAt.Valid {
			line.Item.CreatedAt = itemCreatedAt.Time.UTC()
		}
		line.Item.Seller = domain.UserRef{
			ID:      sellerID.String,
			Name:    sellerName.String,
			Address: sellerAddress.String,
			City:    sellerCity.String,
			Country: sellerCountry.String,
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

// insertLazyItems вставляет в каталог товары без ID, мутируя позиции
// заказа присвоенными идентификаторами. Выполняется в той же
// транзакции, что и запись агрегата.
func insertLazyItems(ctx context.Context, tx *sql.Tx, order *domain.Order, createdAt time.Time) error {
	for i := range order.Lines {
		item := order.Lines[i].Item
		if item.ID != "" {
			continue
		}
		item.ID = uuid.NewString()
		item.CreatedAt = createdAt
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, seller_id, name, description, price, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, item.ID, item.Seller.ID, item.Name, item.Description, item.Price, item.CreatedAt); err != nil {
			if isForeignKeyViolation(err, "seller") {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("insert lazy item: %w", err)
		}
		order.Lines[i].Item = item
	}
	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, order domain.Order) error {
	for position, line := range order.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, item_id, qty, position)
			VALUES ($1,$2,$3,$4,$5)
		`, uuid.NewString(), order.ID, line.Item.ID, line.Qty, position); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateLineItem
			}
			if isForeignKeyViolation(err, "item") {
				return domain.ErrItemNotFound
			}
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func orderExistsTx(ctx context.Context, tx *sql.Tx, orderID string) (bool, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// isForeignKeyViolation сопоставляет нарушение FK с конкретной связью
// по имени constraint'а.
func isForeignKeyViolation(err error, constraintPart string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" && strings.Contains(pgErr.ConstraintName, constraintPart)
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
