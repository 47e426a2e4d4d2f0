package domain

import "time"

// User — полная учётная запись пользователя маркетплейса.
// Используется только слоем аутентификации; в другие агрегаты
// полная запись никогда не встраивается, чтобы не утекали credentials.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	LoginCount   int64
	Address      string
	City         string
	Country      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef — безопасная проекция пользователя для встраивания
// в заказы и товары: только идентификатор, имя и адресные поля.
type UserRef struct {
	ID      string
	Name    string
	Address string
	City    string
	Country string
}

// Ref возвращает простую проекцию полной записи.
func (u User) Ref() UserRef {
	return UserRef{
		ID:      u.ID,
		Name:    u.Name,
		Address: u.Address,
		City:    u.City,
		Country: u.Country,
	}
}
