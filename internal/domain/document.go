package domain

import "time"

// OrderDocument — неизменяемый снимок заказа, отрендеренный внешним
// генератором. Документы только добавляются; «последним» считается
// самый свежий по времени создания.
type OrderDocument struct {
	ID        string
	OrderID   string
	Content   string
	CreatedAt time.Time
}

// Zero сообщает, является ли документ пустым значением.
func (d OrderDocument) Zero() bool {
	return d.ID == "" && d.Content == ""
}
