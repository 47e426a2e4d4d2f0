package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item — товарная позиция каталога. Товар принадлежит ровно одному продавцу.
// Пустой ID означает, что товар ещё не сохранён в каталоге: такие товары
// вставляются лениво внутри транзакции создания заказа.
type Item struct {
	ID          string
	Name        string
	Seller      UserRef
	Description string
	Price       decimal.Decimal
	CreatedAt   time.Time
}

// Validate проверяет инварианты товара.
func (i Item) Validate() []error {
	var errs []error
	if i.Seller.ID == "" {
		errs = append(errs, ErrUserNotFound)
	}
	if i.Price.IsNegative() {
		errs = append(errs, ErrLinePriceInvalid)
	}
	return errs
}
