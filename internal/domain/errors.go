package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора покупателя в заказе.
	ErrBuyerRequired = errors.New("buyer id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrLineQtyInvalid = errors.New("line qty must be greater than zero")
	// Ошибка, если цена товара в позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line item price must be non-negative")
	// Ошибка повторяющегося товара внутри одного заказа.
	ErrDuplicateLineItem = errors.New("line items must be unique within an order")
	// Ошибка отрицательной итоговой суммы заказа.
	ErrTotalPriceNegative = errors.New("total price must be non-negative")
	// Ошибка, если окно доставки задано с началом позже конца.
	ErrDeliveryWindowInvalid = errors.New("delivery window start must not be after end")
	// Ошибка отсутствующего номера карты в платёжных реквизитах.
	ErrBillingCardRequired = errors.New("billing card number is required")
	// ErrLimitInvalid возвращается для неположительного limit в аналитических запросах.
	ErrLimitInvalid = errors.New("limit must be a positive integer")

	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrItemNotFound возвращается, если товар не найден в каталоге.
	ErrItemNotFound = errors.New("item not found")
	// ErrOrderNotFound возвращается, если заказ (или часть его агрегата) не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDocumentNotFound возвращается, если у заказа нет ни одного документа.
	ErrDocumentNotFound = errors.New("order document not found")

	// ErrOrderAlreadyPersisted — попытка создать заказ, у которого уже есть ID.
	ErrOrderAlreadyPersisted = errors.New("order is already persisted")
	// ErrOrderAlreadyExists сигнализирует о конфликте ID при создании.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderVersionConflict сигнализирует о проигранной гонке read-then-write.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrOrderAlreadyCancelled — операция недопустима для отменённого заказа.
	ErrOrderAlreadyCancelled = errors.New("order is already cancelled")

	// ErrOutboxPublish — не удалось обновить статус outbox-сообщения.
	ErrOutboxPublish = errors.New("failed to update outbox message status")
)
