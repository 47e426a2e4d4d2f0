package domain

import "github.com/shopspring/decimal"

// ItemSales — строка отчёта продаж продавца: товар и суммарное
// проданное количество по всем заказам. Товары без продаж включаются
// с AmountSold = 0.
type ItemSales struct {
	ItemID      string
	Name        string
	Description string
	Price       decimal.Decimal
	AmountSold  int64
}

// SellerVolume — суммарное количество товара, купленное покупателем
// у конкретного продавца. Используется рекомендательным движком.
type SellerVolume struct {
	SellerID string
	Quantity int64
}
