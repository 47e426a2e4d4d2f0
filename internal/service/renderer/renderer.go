package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// UBLRenderer — упрощённый генератор UBL-подобного XML документа заказа.
// Боевой рендерер живёт за пределами сервиса; этот формирует
// детерминированный документ для dev-окружения и тестов.
type UBLRenderer struct{}

// NewUBLRenderer создаёт рендерер документов заказа.
func NewUBLRenderer() *UBLRenderer {
	return &UBLRenderer{}
}

// Render формирует XML-представление заказа. Заказ обязан иметь
// присвоенный ID. Продавцы перечисляются по одному разу в порядке
// первого появления в позициях, поэтому вывод детерминирован.
func (r *UBLRenderer) Render(order domain.Order) (string, error) {
	if order.ID == "" {
		return "", fmt.Errorf("cannot render document for unsaved order")
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<Order>\n")
	fmt.Fprintf(&b, "  <ID>%s</ID>\n", order.ID)
	fmt.Fprintf(&b, "  <IssueDate>%s</IssueDate>\n", order.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "  <Status>%s</Status>\n", order.Status)

	b.WriteString("  <BuyerParty>\n")
	fmt.Fprintf(&b, "    <ID>%s</ID>\n", order.Buyer.ID)
	fmt.Fprintf(&b, "    <Name>%s</Name>\n", escape(order.Buyer.Name))
	fmt.Fprintf(&b, "    <Address>%s, %s, %s</Address>\n",
		escape(order.Buyer.Address), escape(order.Buyer.City), escape(order.Buyer.Country))
	b.WriteString("  </BuyerParty>\n")

	for _, seller := range orderedSellers(order) {
		b.WriteString("  <SellerParty>\n")
		fmt.Fprintf(&b, "    <ID>%s</ID>\n", seller.ID)
		fmt.Fprintf(&b, "    <Name>%s</Name>\n", escape(seller.Name))
		b.WriteString("  </SellerParty>\n")
	}

	for i, line := range order.Lines {
		b.WriteString("  <OrderLine>\n")
		fmt.Fprintf(&b, "    <LineID>%d</LineID>\n", i+1)
		fmt.Fprintf(&b, "    <Item>%s</Item>\n", escape(line.Item.Name))
		fmt.Fprintf(&b, "    <SellerID>%s</SellerID>\n", line.Item.Seller.ID)
		fmt.Fprintf(&b, "    <Quantity>%d</Quantity>\n", line.Qty)
		fmt.Fprintf(&b, "    <Price>%s</Price>\n", line.Item.Price.String())
		b.WriteString("  </OrderLine>\n")
	}

	fmt.Fprintf(&b, "  <TotalAmount>%s</TotalAmount>\n", order.TotalPrice.String())
	b.WriteString("</Order>\n")

	return b.String(), nil
}

// orderedSellers возвращает продавцов заказа без дублей в порядке
// первого появления.
func orderedSellers(order domain.Order) []domain.UserRef {
	seen := make(map[string]struct{}, len(order.Lines))
	sellers := make([]domain.UserRef, 0, len(order.Lines))
	for _, line := range order.Lines {
		if _, ok := seen[line.Item.Seller.ID]; ok {
			continue
		}
		seen[line.Item.Seller.ID] = struct{}{}
		sellers = append(sellers, line.Item.Seller)
	}
	return sellers
}

func escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}

var _ domain.DocumentRenderer = (*UBLRenderer)(nil)
