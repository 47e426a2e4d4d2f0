package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, решение по нему ещё не принято.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён; терминальный статус.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderLine представляет одну позицию заказа: товар и его количество.
// Количество всегда хранится рядом с товаром, поэтому рассинхронизация
// «товары отдельно, количества отдельно» невозможна по построению.
type OrderLine struct {
	Item Item
	Qty  int32
}

// BillingDetails — платёжные реквизиты заказа. Существуют только как
// подзапись агрегата и живут строго в ногу с ним.
type BillingDetails struct {
	ID         string
	CardNumber string
	CVV        string
	Expiry     string
}

// DeliveryInstructions — адрес и окно доставки заказа.
type DeliveryInstructions struct {
	ID          string
	Address     string
	WindowStart time.Time
	WindowEnd   time.Time
}

// Order — корень агрегата: заголовок, платёжные реквизиты, инструкции
// доставки и упорядоченный список позиций. Создаётся, обновляется и
// удаляется как единое целое.
type Order struct {
	ID         string
	Buyer      UserRef
	Status     OrderStatus
	Lines      []OrderLine
	Billing    BillingDetails
	Delivery   DeliveryInstructions
	TotalPrice decimal.Decimal
	// LatestDocumentID ссылается на последний отрендеренный документ
	// заказа; пустая строка — документов ещё нет.
	LatestDocumentID string
	Version          int64
	CreatedAt        time.Time
	LastEdited       time.Time
}

// ValidateInvariants проверяет структурные инварианты агрегата и возвращает
// список замечаний. Итоговая сумма не пересчитывается: корректность
// TotalPrice гарантируется валидацией выше по стеку.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.Buyer.ID == "" {
		errs = append(errs, ErrBuyerRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if o.TotalPrice.IsNegative() {
		errs = append(errs, ErrTotalPriceNegative)
	}

	seen := make(map[string]struct{}, len(o.Lines))
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.Item.Price.IsNegative() {
			errs = append(errs, ErrLinePriceInvalid)
		}
		// Уникальность проверяема только для уже сохранённых товаров.
		if line.Item.ID == "" {
			continue
		}
		if _, dup := seen[line.Item.ID]; dup {
			errs = append(errs, ErrDuplicateLineItem)
		}
		seen[line.Item.ID] = struct{}{}
	}

	if o.Billing.CardNumber == "" {
		errs = append(errs, ErrBillingCardRequired)
	}
	if !o.Delivery.WindowStart.IsZero() && !o.Delivery.WindowEnd.IsZero() &&
		o.Delivery.WindowStart.After(o.Delivery.WindowEnd) {
		errs = append(errs, ErrDeliveryWindowInvalid)
	}

	return errs
}

// Terminal сообщает, достиг ли заказ терминального статуса.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCancelled
}
